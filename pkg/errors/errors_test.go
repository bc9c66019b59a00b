package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code         Code
		status       int
		publicMsg    string
		retryable    bool
		detailsOK    bool
		clientFacing bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true, clientFacing: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "Not authenticated", clientFacing: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found", clientFacing: true},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", clientFacing: true},
		{code: CodePayloadTooLarge, status: http.StatusRequestEntityTooLarge, publicMsg: "payload too large", clientFacing: true},
		{code: CodeUnsupportedMedia, status: http.StatusUnsupportedMediaType, publicMsg: "Only image files are allowed", clientFacing: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded", clientFacing: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			meta := MetadataFor(tt.code)
			assert.Equal(t, tt.status, meta.HTTPStatus)
			assert.Equal(t, tt.publicMsg, meta.PublicMessage)
			assert.Equal(t, tt.retryable, meta.Retryable)
			assert.Equal(t, tt.detailsOK, meta.DetailsAllowed)
			assert.Equal(t, tt.clientFacing, meta.ClientFacing)
		})
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, MetadataFor("SOMETHING_UNKNOWN").HTTPStatus)
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	assert.Equal(t, CodeValidation, base.Code())
	assert.Equal(t, "missing foo", base.Message())
	assert.Nil(t, base.Details())

	base.WithDetails(map[string]any{"field": "foo"})
	assert.NotNil(t, base.Details())

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, CodeConflict, wrapped.Code())
	assert.Contains(t, wrapped.Error(), "boom")
}

func TestAsAndIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeNotFound, "no product"))
	require.NotNil(t, As(err))
	assert.True(t, IsCode(err, CodeNotFound))
	assert.False(t, IsCode(err, CodeConflict))
	assert.Equal(t, CodeNotFound, CodeOf(err))
	assert.Equal(t, CodeInternal, CodeOf(stdErrors.New("plain")))
	assert.Nil(t, As(nil))
}

func TestDumpExtractsPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key", TableName: "users", Message: "duplicate key value"}
	err := Wrap(CodeConflict, pgErr, "insert user")

	dump := Dump(err)
	assert.Equal(t, CodeConflict, dump.Code)
	require.NotNil(t, dump.Postgres)
	assert.Equal(t, "23505", dump.Postgres.Code)
	assert.Equal(t, "users_email_key", dump.Postgres.Constraint)
	assert.Len(t, dump.Chain, 2)

	fields := dump.Fields()
	assert.Equal(t, "users", fields["pg_table"])
	assert.NotContains(t, fields, "pg_detail")
}

func TestDumpRecognizesLibPQ(t *testing.T) {
	err := fmt.Errorf("migrate: %w", &pq.Error{Code: "42P07", Table: "users", Message: "relation already exists"})

	dump := Dump(err)
	require.NotNil(t, dump.Postgres)
	assert.Equal(t, "42P07", dump.Postgres.Code)
	assert.Empty(t, dump.Code)
	assert.Equal(t, "42P07", dump.Fields()["pg_code"])
}

func TestDumpPlainErrorHasNoPostgres(t *testing.T) {
	dump := Dump(stdErrors.New("boom"))
	assert.Nil(t, dump.Postgres)
	assert.NotContains(t, dump.Fields(), "pg_code")
}

func TestDumpNil(t *testing.T) {
	assert.Equal(t, ErrorDump{}, Dump(nil))
}
