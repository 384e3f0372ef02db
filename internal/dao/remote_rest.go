package dao

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/haierkeys/personal-notes/internal/domain"
	"github.com/haierkeys/personal-notes/pkg/logger"
	"github.com/haierkeys/personal-notes/pkg/timex"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// PostgreSQL / PostgREST codes meaning the table is missing
// 表示表不存在的 PostgreSQL / PostgREST 错误码
const (
	pgUndefinedTable   = "42P01"
	pgrstTableNotFound = "PGRST205"
)

// RemoteError 远端返回的非 2xx 响应
// RemoteError a non-2xx answer of the PostgREST endpoint
type RemoteError struct {
	Status  int
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("remote error %d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, domain.ErrSchemaMissing) match a missing-table answer
func (e *RemoteError) Is(target error) bool {
	if target != domain.ErrSchemaMissing {
		return false
	}
	return e.Code == pgUndefinedTable || e.Code == pgrstTableNotFound || strings.Contains(e.Message, "does not exist")
}

// RESTOptions PostgREST 客户端参数
type RESTOptions struct {
	URL     string
	Key     string
	Table   string
	Timeout time.Duration
	// Client 为空时使用默认 http.Client
	Client *http.Client
}

// restNoteStore 通过 Supabase/PostgREST HTTP 接口实现 domain.RemoteNoteStore
type restNoteStore struct {
	endpoint string
	key      string
	client   *http.Client
	logger   *zap.Logger
}

// restRow the JSON shape of a notes row
type restRow struct {
	ID        rowID      `json:"id,omitempty"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	UpdatedAt timex.Time `json:"updated_at"`
}

// rowID accepts string (uuid) and numeric (bigserial) primary keys
type rowID string

func (r *rowID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*r = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		s = unquoted
	}
	*r = rowID(s)
	return nil
}

// restErrorBody PostgREST 错误响应
type restErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewRESTNoteStore 创建 PostgREST 远端存储
func NewRESTNoteStore(opts RESTOptions, logger *zap.Logger) (domain.RemoteNoteStore, error) {
	u, err := url.Parse(strings.TrimRight(opts.URL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid remote url %q", opts.URL)
	}
	if opts.Table == "" {
		return nil, errors.New("remote table is required")
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &restNoteStore{
		endpoint: u.String() + "/rest/v1/" + url.PathEscape(opts.Table),
		key:      opts.Key,
		client:   client,
		logger:   logger,
	}, nil
}

func (s *restNoteStore) Driver() string {
	return DriverREST
}

func (s *restNoteStore) Select(ctx context.Context, q domain.Query) ([]domain.Note, error) {
	params := url.Values{}
	if len(q.Columns) > 0 {
		params.Set("select", strings.Join(q.Columns, ","))
	} else {
		params.Set("select", "*")
	}
	if q.Filter != nil {
		params.Set(q.Filter.Column, "eq."+q.Filter.Value)
	}
	if q.Order != nil {
		dir := "desc"
		if q.Order.Ascending {
			dir = "asc"
		}
		params.Set("order", q.Order.Column+"."+dir)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var rows []restRow
	if err := s.do(ctx, http.MethodGet, params, nil, &rows); err != nil {
		return nil, err
	}
	return rowsToDomain(rows), nil
}

func (s *restNoteStore) Insert(ctx context.Context, row domain.NoteRow) (domain.Note, error) {
	var rows []restRow
	if err := s.do(ctx, http.MethodPost, nil, toRESTRow(row), &rows); err != nil {
		return domain.Note{}, err
	}
	if len(rows) == 0 {
		return domain.Note{}, errors.New("remote insert returned no row")
	}
	return rows[0].toDomain(), nil
}

func (s *restNoteStore) Update(ctx context.Context, row domain.NoteRow, f domain.Filter) (domain.Note, error) {
	params := url.Values{}
	params.Set(f.Column, "eq."+f.Value)

	var rows []restRow
	if err := s.do(ctx, http.MethodPatch, params, toRESTRow(row), &rows); err != nil {
		return domain.Note{}, err
	}
	if len(rows) == 0 {
		return domain.Note{}, domain.ErrNoteNotFound
	}
	return rows[0].toDomain(), nil
}

func (s *restNoteStore) Delete(ctx context.Context, f domain.Filter) error {
	params := url.Values{}
	params.Set(f.Column, "eq."+f.Value)
	return s.do(ctx, http.MethodDelete, params, nil, nil)
}

// Initialize probes the table; PostgREST cannot create tables, a missing one surfaces as ErrSchemaMissing
// Initialize 探测表是否存在；PostgREST 无法建表，表缺失时返回 ErrSchemaMissing
func (s *restNoteStore) Initialize(ctx context.Context) error {
	_, err := s.Select(ctx, domain.Query{Columns: []string{domain.ColumnID}, Limit: 1})
	return err
}

func (s *restNoteStore) do(ctx context.Context, method string, params url.Values, body any, out any) error {
	start := time.Now()

	target := s.endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode remote request failed")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return errors.Wrap(err, "build remote request failed")
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "remote %s failed", method)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read remote response failed")
	}

	s.logger.Debug("remote request",
		zap.String(logger.FieldMethod, method),
		zap.Int("status", resp.StatusCode),
		zap.Duration(logger.FieldDuration, time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeRemoteError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "decode remote response failed")
	}
	return nil
}

func decodeRemoteError(status int, data []byte) error {
	rerr := &RemoteError{Status: status, Message: http.StatusText(status)}
	var body restErrorBody
	if err := sonic.Unmarshal(data, &body); err == nil {
		rerr.Code = body.Code
		if body.Message != "" {
			rerr.Message = body.Message
		}
	} else if msg := strings.TrimSpace(string(data)); msg != "" {
		rerr.Message = msg
	}
	return rerr
}

func toRESTRow(row domain.NoteRow) restRow {
	return restRow{Title: row.Title, Content: row.Content, UpdatedAt: row.UpdatedAt}
}

func (r restRow) toDomain() domain.Note {
	return domain.Note{
		ID:        domain.RemoteID(string(r.ID)),
		Title:     r.Title,
		Content:   r.Content,
		UpdatedAt: r.UpdatedAt,
	}
}

func rowsToDomain(rows []restRow) []domain.Note {
	notes := make([]domain.Note, 0, len(rows))
	for _, r := range rows {
		notes = append(notes, r.toDomain())
	}
	return notes
}
