// Package remote implements the REST client for the invoicing API. One
// generic client per entity family; the remote service may be unreachable
// at any time and every failure is reported as an ordinary error for the
// caller to surface.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/models"
)

// Client is the remote CRUD surface for one entity family.
type Client[R models.Record] interface {
	// List fetches the full remote table, keyed by id.
	List(ctx context.Context) (map[string]R, error)
	// Create posts a request payload; the server assigns metadata and
	// returns the canonical record.
	Create(ctx context.Context, req any) (R, error)
	// Update is a create-or-replace by id. Reconciliation pushes dirty
	// records through here with their client-generated ids.
	Update(ctx context.Context, id string, req any) (R, error)
	// Delete removes a record by id. A missing remote record is reported
	// as common.ErrorNotFound.
	Delete(ctx context.Context, id string) error
}

// API is the HTTP implementation of Client.
type API[R models.Record] struct {
	baseURL string
	family  common.Family
	http    *http.Client
}

// NewAPI builds a client for one family rooted at baseURL. Timeout policy
// is inherited from httpClient; pass nil for the default transport.
func NewAPI[R models.Record](baseURL string, family common.Family, httpClient *http.Client) *API[R] {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &API[R]{baseURL: baseURL, family: family, http: httpClient}
}

type recordEnvelope[R any] struct {
	Record R `json:"Record"`
}

type listEnvelope[R any] struct {
	Records map[string]R `json:"Records"`
}

type deleteEnvelope struct {
	Success bool `json:"Success"`
}

func (a *API[R]) List(ctx context.Context) (map[string]R, error) {
	var env listEnvelope[R]
	if err := a.do(ctx, http.MethodGet, a.familyURL(""), nil, &env); err != nil {
		return nil, err
	}
	if env.Records == nil {
		env.Records = map[string]R{}
	}
	return env.Records, nil
}

func (a *API[R]) Create(ctx context.Context, req any) (R, error) {
	var env recordEnvelope[R]
	err := a.do(ctx, http.MethodPost, a.familyURL(""), req, &env)
	return env.Record, err
}

func (a *API[R]) Update(ctx context.Context, id string, req any) (R, error) {
	var env recordEnvelope[R]
	err := a.do(ctx, http.MethodPut, a.familyURL(id), req, &env)
	return env.Record, err
}

func (a *API[R]) Delete(ctx context.Context, id string) error {
	var env deleteEnvelope
	if err := a.do(ctx, http.MethodDelete, a.familyURL(id), nil, &env); err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("delete %s %s: remote refused", a.family, id)
	}
	return nil
}

func (a *API[R]) familyURL(id string) string {
	if id == "" {
		return fmt.Sprintf("%s/api/%s", a.baseURL, a.family)
	}
	return fmt.Sprintf("%s/api/%s/%s", a.baseURL, a.family, id)
}

func (a *API[R]) do(ctx context.Context, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, url, common.ErrorNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %s: %s", method, url, resp.Status, string(b))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
