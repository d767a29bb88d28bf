package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/adrianliechti/narrator/server/api"
)

type NarrationService struct {
	Options []RequestOption
}

func NewNarrationService(opts ...RequestOption) NarrationService {
	return NarrationService{
		Options: opts,
	}
}

type Narration = api.Narration

type NarrationRequest = api.NarrateRequest

// Error is returned when the server rejects or fails a narration.
type Error struct {
	StatusCode int

	Stage string
	Index *int

	Message string
}

func (e *Error) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
	}

	return fmt.Sprintf("%d: %s: %s", e.StatusCode, e.Stage, e.Message)
}

func (r *NarrationService) New(ctx context.Context, input NarrationRequest, opts ...RequestOption) (*Narration, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	body, err := json.Marshal(input)

	if err != nil {
		return nil, err
	}

	req, _ := http.NewRequestWithContext(ctx, "POST", c.URL+"/v1/narrations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	c.authorize(req)

	resp, err := c.Client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var result api.ErrorResponse

		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.Error.Message == "" {
			result.Error.Message = resp.Status
		}

		return nil, &Error{
			StatusCode: resp.StatusCode,

			Stage: result.Error.Stage,
			Index: result.Error.Index,

			Message: result.Error.Message,
		}
	}

	var result Narration

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}
