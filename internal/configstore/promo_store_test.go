package configstore

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "forecastwb/internal/errors"
)

func TestSavePromoCalendar(t *testing.T) {
	store, paths := newTestStore(t)
	ctx := context.Background()

	content := []byte("name,start_date,end_date,type\n" +
		"Sale,2024-01-01,2024-01-07,discount\n" +
		"Broken,2024-01-10,2024-01-05,discount\n")

	result, err := store.SavePromoCalendar(ctx, "dev", RoleEditor, "promo.csv", content)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalRows)
	assert.Len(t, result.Preview, 2)
	require.Len(t, result.InvalidRows, 1)
	assert.Equal(t, []string{"date_order"}, result.InvalidRows[0].Issues)

	full := filepath.Join(paths.BaseDir, filepath.FromSlash(result.Path))
	assert.True(t, strings.HasPrefix(full, filepath.Join(paths.UploadsDir, "dev")))
	assert.True(t, strings.HasSuffix(result.Path, "_promo.csv"))
	assert.FileExists(t, full)
}

func TestSavePromoCalendarMissingColumns(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.SavePromoCalendar(context.Background(), "dev", RoleEditor,
		"promo.csv", []byte("name,start_date\nSale,2024-01-01\n"))
	require.True(t, apierrors.IsType(err, apierrors.ErrTypeValidation))
	assert.Contains(t, err.Error(), "missing columns: end_date, type")
}

func TestSavePromoCalendarRequiresEditor(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.SavePromoCalendar(context.Background(), "dev", RoleViewer, "promo.csv", []byte("x"))
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypePermission))
}

func TestSavePromoCalendarSanitizesFilename(t *testing.T) {
	store, _ := newTestStore(t)

	content := []byte("name,start_date,end_date,type\nSale,2024-01-01,2024-01-07,discount\n")
	result, err := store.SavePromoCalendar(context.Background(), "dev", RoleEditor,
		"../../../evil.csv", content)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.Path, "_evil.csv"))
	assert.NotContains(t, result.Path, "..")
}
