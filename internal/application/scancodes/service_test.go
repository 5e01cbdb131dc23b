package scancodes

import (
	"context"
	"testing"

	"sfms-backend/internal/domain"
	"sfms-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetScanCode_AndVerify(t *testing.T) {
	s := &Service{DB: testutil.NewDB(t)}
	ctx := context.Background()

	u, err := s.SetScanCode(ctx, " Student@Uni.ac.th ", "1234", "Somchai")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, "student@uni.ac.th", u.Email)
	assert.NotEqual(t, "1234", u.ScanCodeHash)

	got, err := s.Verify(ctx, "student@uni.ac.th", "1234")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Verify(ctx, "student@uni.ac.th", "9999")
	assert.Equal(t, domain.ErrInvalidScanCode, err)
	_, err = s.Verify(ctx, "nobody@uni.ac.th", "1234")
	assert.Equal(t, domain.ErrInvalidScanCode, err)
}

func TestSetScanCode_ReplacesCode(t *testing.T) {
	s := &Service{DB: testutil.NewDB(t)}
	ctx := context.Background()

	first, err := s.SetScanCode(ctx, "a@uni.ac.th", "1111", "A")
	require.NoError(t, err)
	second, err := s.SetScanCode(ctx, "a@uni.ac.th", "2222", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "A", second.DisplayName)

	_, err = s.Verify(ctx, "a@uni.ac.th", "1111")
	assert.Equal(t, domain.ErrInvalidScanCode, err)
	_, err = s.Verify(ctx, "a@uni.ac.th", "2222")
	assert.NoError(t, err)
}

func TestMissingFields(t *testing.T) {
	s := &Service{DB: testutil.NewDB(t)}
	_, err := s.SetScanCode(context.Background(), "", "1", "")
	assert.Equal(t, ErrMissingFields, err)
	_, err = s.Verify(context.Background(), "a@b.c", "")
	assert.Equal(t, ErrMissingFields, err)
}
