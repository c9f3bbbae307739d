package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rogersnm/calsync/internal/codec"
	"github.com/rogersnm/calsync/internal/model"
	"github.com/rogersnm/calsync/internal/observe"
)

const (
	DefaultAPIURL = "https://api.airtable.com/v0"
	DefaultTable  = "Calendar Events"

	// MaxBatch is the most records the remote accepts in one create call.
	MaxBatch = 10

	pageSize = 100
)

// CloudStore implements Remote against an Airtable-style table API.
type CloudStore struct {
	apiURL string
	baseID string
	table  string
	apiKey string
	client *http.Client
	sink   observe.Sink
}

// compile-time check
var _ Remote = (*CloudStore)(nil)

func NewCloudStore(baseID, table, apiKey string) *CloudStore {
	return NewCloudStoreWithBase(DefaultAPIURL, baseID, table, apiKey)
}

func NewCloudStoreWithBase(apiURL, baseID, table, apiKey string) *CloudStore {
	if table == "" {
		table = DefaultTable
	}
	return &CloudStore{
		apiURL: strings.TrimRight(apiURL, "/"),
		baseID: baseID,
		table:  table,
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
		sink:   observe.Discard,
	}
}

// WithSink sets where skipped-record counts are reported.
func (cs *CloudStore) WithSink(s observe.Sink) *CloudStore {
	if s != nil {
		cs.sink = s
	}
	return cs
}

// --- HTTP helpers ---

func (cs *CloudStore) tablePath() string {
	return "/" + url.PathEscape(cs.baseID) + "/" + url.PathEscape(cs.table)
}

func (cs *CloudStore) doJSON(ctx context.Context, op, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshaling request: %w", op, err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, cs.apiURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+cs.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := cs.client.Do(req)
	if err != nil {
		return nil, &RemoteError{Op: op, Message: err.Error(), Kind: ErrRemoteUnavailable}
	}
	return resp, nil
}

// apiError accepts both error shapes the API uses:
// {"error": {"type": "...", "message": "..."}} and {"error": "NOT_FOUND"}.
type apiError struct {
	Error json.RawMessage `json:"error"`
}

func (e apiError) message() string {
	if len(e.Error) == 0 {
		return ""
	}
	var obj struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Error, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		return obj.Type
	}
	var s string
	if err := json.Unmarshal(e.Error, &s); err == nil {
		return s
	}
	return ""
}

func decodeResponse[T any](op string, resp *http.Response) (T, error) {
	defer resp.Body.Close()
	var zero T

	if resp.StatusCode >= 400 {
		rerr := &RemoteError{Op: op, Status: resp.StatusCode, Kind: classifyStatus(resp.StatusCode)}
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil {
			rerr.Message = apiErr.message()
		}
		return zero, rerr
	}

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return zero, &RemoteError{Op: op, Status: resp.StatusCode, Message: "decoding response: " + err.Error(), Kind: ErrRemoteUnavailable}
	}
	return out, nil
}

// --- API payload types ---

type recordList struct {
	Records []codec.RemoteRecord `json:"records"`
	Offset  string               `json:"offset,omitempty"`
}

type fieldsPayload struct {
	Fields codec.RemoteFields `json:"fields"`
}

type createPayload struct {
	Records []fieldsPayload `json:"records"`
}

type deleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// --- Operations ---

// List returns every valid record, following the offset cursor until the
// remote reports no more pages. Records failing the validity check are
// skipped and counted.
func (cs *CloudStore) List(ctx context.Context) ([]model.Event, error) {
	var all []model.Event
	invalid := 0
	offset := ""
	for {
		q := url.Values{}
		q.Set("pageSize", fmt.Sprint(pageSize))
		q.Set("sort[0][field]", "StartDate")
		q.Set("sort[0][direction]", "asc")
		if offset != "" {
			q.Set("offset", offset)
		}
		resp, err := cs.doJSON(ctx, "remote.list", http.MethodGet, cs.tablePath()+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		page, err := decodeResponse[recordList]("remote.list", resp)
		if err != nil {
			return nil, err
		}
		for _, rec := range page.Records {
			if !rec.Valid() {
				invalid++
				continue
			}
			all = append(all, codec.FromRemote(rec))
		}
		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}
	if invalid > 0 {
		cs.sink.Report(observe.Notice{Op: "remote.list", Err: ErrInvalidRecord, Count: invalid})
	}
	if all == nil {
		all = []model.Event{}
	}
	return all, nil
}

// Create stores events in chunks of MaxBatch, one chunk at a time. On
// failure the events created by earlier chunks are returned with the error.
func (cs *CloudStore) Create(ctx context.Context, events ...model.Event) ([]model.Event, error) {
	created := make([]model.Event, 0, len(events))
	for start := 0; start < len(events); start += MaxBatch {
		end := min(start+MaxBatch, len(events))

		payload := createPayload{Records: make([]fieldsPayload, 0, end-start)}
		for _, e := range events[start:end] {
			payload.Records = append(payload.Records, fieldsPayload{Fields: codec.ToRemote(e).Fields})
		}

		resp, err := cs.doJSON(ctx, "remote.create", http.MethodPost, cs.tablePath(), payload)
		if err != nil {
			return created, err
		}
		out, err := decodeResponse[recordList]("remote.create", resp)
		if err != nil {
			return created, err
		}
		for _, rec := range out.Records {
			created = append(created, codec.FromRemote(rec))
		}
	}
	return created, nil
}

func (cs *CloudStore) Update(ctx context.Context, remoteID string, e model.Event) (model.Event, error) {
	if remoteID == "" {
		return model.Event{}, &RemoteError{Op: "remote.update", Message: "missing remote id", Kind: ErrRemoteRejected}
	}
	payload := fieldsPayload{Fields: codec.ToRemote(e).Fields}
	resp, err := cs.doJSON(ctx, "remote.update", http.MethodPatch, cs.tablePath()+"/"+url.PathEscape(remoteID), payload)
	if err != nil {
		return model.Event{}, err
	}
	rec, err := decodeResponse[codec.RemoteRecord]("remote.update", resp)
	if err != nil {
		return model.Event{}, err
	}
	return codec.FromRemote(rec), nil
}

func (cs *CloudStore) Delete(ctx context.Context, remoteID string) error {
	if remoteID == "" {
		return &RemoteError{Op: "remote.delete", Message: "missing remote id", Kind: ErrRemoteRejected}
	}
	resp, err := cs.doJSON(ctx, "remote.delete", http.MethodDelete, cs.tablePath()+"/"+url.PathEscape(remoteID), nil)
	if err != nil {
		return err
	}
	_, err = decodeResponse[deleteResult]("remote.delete", resp)
	return err
}

// Find looks up the record whose ID field equals eventID.
func (cs *CloudStore) Find(ctx context.Context, eventID string) (model.Event, error) {
	q := url.Values{}
	q.Set("maxRecords", "1")
	q.Set("filterByFormula", fmt.Sprintf("{ID}='%s'", escapeFormula(eventID)))
	resp, err := cs.doJSON(ctx, "remote.find", http.MethodGet, cs.tablePath()+"?"+q.Encode(), nil)
	if err != nil {
		return model.Event{}, err
	}
	page, err := decodeResponse[recordList]("remote.find", resp)
	if err != nil {
		return model.Event{}, err
	}
	for _, rec := range page.Records {
		if rec.Fields.ID == eventID {
			return codec.FromRemote(rec), nil
		}
	}
	return model.Event{}, fmt.Errorf("remote %s: %w", eventID, ErrNotFound)
}

func escapeFormula(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
