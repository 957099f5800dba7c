package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/adapter/http/middleware"
	"github.com/iho/walletledger/internal/adapter/http/render"
	"github.com/iho/walletledger/internal/usecase"
)

const maxBodyBytes = 1 << 20

// CommandExecutor runs engine commands.
type CommandExecutor interface {
	Execute(ctx context.Context, cmd usecase.Command) (*usecase.Result, error)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	render.JSON(w, status, data)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	render.Error(w, r, err)
}

// decodeJSON decodes and validates a request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &dto.ValidationError{Fields: map[string]string{"body": "required"}}
		}
		return &dto.ValidationError{Fields: map[string]string{"body": err.Error()}}
	}
	return dto.Validate(dst)
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

func tenantID(r *http.Request) string {
	return middleware.TenantID(r.Context())
}

// createdOrReplayed is 201 for a new effect and 200 for an idempotent replay.
func createdOrReplayed(isDuplicate bool) int {
	if isDuplicate {
		return http.StatusOK
	}
	return http.StatusCreated
}

func pagination(total int64, limit, offset int) dto.Pagination {
	return dto.Pagination{Total: total, Limit: limit, Offset: offset}
}
