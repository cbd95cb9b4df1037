package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/leapstack-labs/leapquery/internal/audit"
	"github.com/leapstack-labs/leapquery/pkg/adapter"
	"github.com/leapstack-labs/leapquery/pkg/ident"
	"github.com/leapstack-labs/leapquery/pkg/wire"
)

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entry := audit.Entry{RequestID: middleware.GetReqID(r.Context())}
	defer func() {
		entry.Duration = time.Since(start)
		s.record(r.Context(), entry)
	}()

	fail := func(status int, msg string) {
		entry.Error = msg
		writeFailure(w, status, msg)
	}

	var req wire.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	entry.Query = req.Query

	if strings.TrimSpace(req.Query) == "" && s.guard == nil {
		fail(http.StatusBadRequest, "query is required")
		return
	}

	if s.guard != nil {
		verdict := s.guard.Check(req.Query)
		entry.StatementType = verdict.StatementType
		if !verdict.Valid {
			entry.Rejected = true
			fail(http.StatusOK, verdict.Error())
			return
		}
	}

	rows, err := s.adapter.Query(r.Context(), req.Query)
	if err != nil {
		s.logger.Debug("query failed", "error", err)
		fail(http.StatusOK, err.Error())
		return
	}
	defer func() { _ = rows.Close() }()

	columns, data, err := readRows(rows)
	if err != nil {
		s.logger.Debug("reading rows failed", "error", err)
		fail(http.StatusOK, err.Error())
		return
	}

	count := len(data)
	entry.Success = true
	entry.RowCount = count
	writeJSON(w, http.StatusOK, wire.QueryResponse{
		Success:  true,
		Data:     data,
		Columns:  columns,
		RowCount: &count,
	})
}

// record writes e to the audit log. Failures are logged, never returned to
// the client.
func (s *Server) record(ctx context.Context, e audit.Entry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(context.WithoutCancel(ctx), e); err != nil {
		s.logger.Warn("audit record failed", "request_id", e.RequestID, "error", err)
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Dialect string `json:"dialect,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.adapter.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Dialect: s.adapter.DialectName()})
}

type tableError struct {
	Error string     `json:"error"`
	Code  ident.Code `json:"code,omitempty"`
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	verdict := ident.ValidateQualifiedTableName(table, s.ident)
	if !verdict.Valid {
		writeJSON(w, http.StatusBadRequest, tableError{Error: verdict.Error, Code: verdict.Code})
		return
	}

	md, err := s.adapter.TableMetadata(r.Context(), verdict.Sanitized)
	if err != nil {
		var notFound *adapter.TableNotFoundError
		if errors.As(err, &notFound) {
			writeJSON(w, http.StatusNotFound, tableError{Error: err.Error()})
			return
		}
		s.logger.Error("table metadata failed", "table", table, "error", err)
		writeJSON(w, http.StatusInternalServerError, tableError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, md)
}

// readRows drains rows into ordered objects, encoding each value for the wire.
func readRows(rows *sql.Rows) ([]string, []wire.Object, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read columns: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read column types: %w", err)
	}
	dbTypes := make([]string, len(types))
	for i, ct := range types {
		dbTypes[i] = strings.ToUpper(ct.DatabaseTypeName())
	}

	data := []wire.Object{}
	dest := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range dest {
		ptrs[i] = &dest[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row: %w", err)
		}
		obj := make(wire.Object, len(columns))
		for i, name := range columns {
			obj[i] = wire.Field{Name: name, Value: encodeValue(dest[i], dbTypes[i])}
		}
		data = append(data, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return columns, data, nil
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, wire.QueryResponse{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
