//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/shelter-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

const isoTimestamp = `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`

type adoptionPayload struct {
	ID          int64   `json:"id"`
	AnimalID    int64   `json:"animalId"`
	Status      string  `json:"status"`
	RequestedAt string  `json:"requestedAt"`
	AdoptedAt   *string `json:"adoptedAt"`
}

type errorPayload struct {
	Status  int            `json:"status"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type apiError struct {
	status int
	body   errorPayload
}

func (e apiError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.body.Code, e.body.Message, e.status)
}

func TestAdoptionDeskContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", `application\/json(?:;\s?charset=utf-8)?`)
	bearer := matchers.Regex("Bearer pact-token", `^Bearer \S+$`)
	adoptionBody := func(status string) matchers.Map {
		return matchers.Map{
			"id":          matchers.Like(pacttest.ExistingAdoptionID),
			"animalId":    matchers.Like(pacttest.ExistingAnimalID),
			"status":      matchers.S(status),
			"requestedAt": matchers.Regex("2024-01-08T12:00:00Z", isoTimestamp),
		}
	}

	run := func(t *testing.T, check func(ctx context.Context, client *deskClient) error) {
		t.Helper()
		err := pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return check(ctx, newDeskClient(config, "pact-token"))
		})
		require.NoError(t, err)
	}

	t.Run("apply", func(t *testing.T) {
		pact.AddInteraction().
			Given(pacttest.StateAnimalSheltered).
			UponReceiving("a request to apply for an adoption").
			WithRequest(http.MethodPost, "/api/adoptions", func(b *pactconsumer.V2RequestBuilder) {
				b.Header("Authorization", bearer)
				b.Header("Content-Type", matchers.S("application/json"))
				b.JSONBody(pacttest.ExampleAdoptionRequest())
			}).
			WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
				b.Header("Content-Type", jsonContentType)
				b.JSONBody(adoptionBody("REQUESTED"))
			})

		run(t, func(ctx context.Context, client *deskClient) error {
			created, err := client.Apply(ctx, pacttest.ExampleAdoptionRequest())
			if err != nil {
				return fmt.Errorf("apply: %w", err)
			}
			if created.Status != "REQUESTED" {
				return fmt.Errorf("expected REQUESTED, got %s", created.Status)
			}
			return nil
		})
	})

	t.Run("confirm approved", func(t *testing.T) {
		confirmed := adoptionBody("CONFIRMED")
		confirmed["adoptedAt"] = matchers.Regex(pacttest.AdoptedAt, isoTimestamp)
		pact.AddInteraction().
			Given(pacttest.StateAdoptionApproved).
			UponReceiving("a request to confirm an approved adoption").
			WithRequest(http.MethodPatch, fmt.Sprintf("/api/adoptions/%d/confirm", pacttest.ExistingAdoptionID), func(b *pactconsumer.V2RequestBuilder) {
				b.Header("Authorization", bearer)
				b.Header("Content-Type", matchers.S("application/json"))
				b.JSONBody(map[string]any{"adoptedAt": pacttest.AdoptedAt})
			}).
			WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
				b.Header("Content-Type", jsonContentType)
				b.JSONBody(confirmed)
			})

		run(t, func(ctx context.Context, client *deskClient) error {
			adopted, err := client.Confirm(ctx, pacttest.ExistingAdoptionID, pacttest.AdoptedAt)
			if err != nil {
				return fmt.Errorf("confirm: %w", err)
			}
			if adopted.Status != "CONFIRMED" || adopted.AdoptedAt == nil {
				return fmt.Errorf("expected a confirmed adoption, got %+v", adopted)
			}
			return nil
		})
	})

	t.Run("confirm unapproved", func(t *testing.T) {
		pact.AddInteraction().
			Given(pacttest.StateAdoptionRequest).
			UponReceiving("a request to confirm an adoption that was never approved").
			WithRequest(http.MethodPatch, fmt.Sprintf("/api/adoptions/%d/confirm", pacttest.ExistingAdoptionID), func(b *pactconsumer.V2RequestBuilder) {
				b.Header("Authorization", bearer)
				b.Header("Content-Type", matchers.S("application/json"))
				b.JSONBody(map[string]any{"adoptedAt": pacttest.AdoptedAt})
			}).
			WillRespondWith(http.StatusConflict, func(b *pactconsumer.V2ResponseBuilder) {
				b.Header("Content-Type", jsonContentType)
				b.JSONBody(matchers.Map{
					"status":  matchers.Like(http.StatusConflict),
					"code":    matchers.S("STATE_CONFLICT"),
					"message": matchers.Like("cannot confirm adoption in status REQUESTED"),
					"details": matchers.Map{"currentStatus": matchers.S("REQUESTED")},
				})
			})

		run(t, func(ctx context.Context, client *deskClient) error {
			_, err := client.Confirm(ctx, pacttest.ExistingAdoptionID, pacttest.AdoptedAt)
			if apiErr, ok := err.(apiError); !ok || apiErr.status != http.StatusConflict || apiErr.body.Details["currentStatus"] != "REQUESTED" {
				return fmt.Errorf("expected 409 with currentStatus, got %v", err)
			}
			return nil
		})
	})

	t.Run("missing adoption", func(t *testing.T) {
		pact.AddInteraction().
			Given(pacttest.StateAdoptionMissing).
			UponReceiving("a request for a missing adoption").
			WithRequest(http.MethodGet, fmt.Sprintf("/api/adoptions/%d", pacttest.MissingAdoptionID), func(b *pactconsumer.V2RequestBuilder) {
				b.Header("Authorization", bearer)
			}).
			WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
				b.Header("Content-Type", jsonContentType)
				b.JSONBody(matchers.Map{
					"status": matchers.Like(http.StatusNotFound),
					"code":   matchers.S("RESOURCE_NOT_FOUND"),
				})
			})

		run(t, func(ctx context.Context, client *deskClient) error {
			_, err := client.Get(ctx, pacttest.MissingAdoptionID)
			if apiErr, ok := err.(apiError); !ok || apiErr.status != http.StatusNotFound {
				return fmt.Errorf("expected 404, got %v", err)
			}
			return nil
		})
	})
}

type deskClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func newDeskClient(config pactconsumer.MockServerConfig, token string) *deskClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	return &deskClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		token:      token,
		httpClient: &http.Client{Transport: &http.Transport{TLSClientConfig: config.TLSConfig}, Timeout: 10 * time.Second},
	}
}

func (c *deskClient) Apply(ctx context.Context, body map[string]any) (*adoptionPayload, error) {
	return c.send(ctx, http.MethodPost, "/api/adoptions", body)
}

func (c *deskClient) Confirm(ctx context.Context, id int64, adoptedAt string) (*adoptionPayload, error) {
	return c.send(ctx, http.MethodPatch, fmt.Sprintf("/api/adoptions/%d/confirm", id), map[string]any{"adoptedAt": adoptedAt})
}

func (c *deskClient) Get(ctx context.Context, id int64) (*adoptionPayload, error) {
	return c.send(ctx, http.MethodGet, fmt.Sprintf("/api/adoptions/%d", id), nil)
}

func (c *deskClient) send(ctx context.Context, method, path string, body any) (*adoptionPayload, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		apiErr := apiError{status: res.StatusCode}
		_ = json.NewDecoder(res.Body).Decode(&apiErr.body)
		return nil, apiErr
	}
	var payload adoptionPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
