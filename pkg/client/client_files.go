package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
)

type FileService struct {
	Options []RequestOption
}

func NewFileService(opts ...RequestOption) FileService {
	return FileService{
		Options: opts,
	}
}

// Download copies the named narration file into w.
func (r *FileService) Download(ctx context.Context, name string, w io.Writer, opts ...RequestOption) error {
	c := newRequestConfig(append(r.Options, opts...)...)

	req, _ := http.NewRequestWithContext(ctx, "GET", c.URL+"/v1/files/"+url.PathEscape(name), nil)

	c.authorize(req)

	resp, err := c.Client.Do(req)

	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.New(resp.Status)
	}

	_, err = io.Copy(w, resp.Body)
	return err
}
