package seed_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/d9705996/hrportal/internal/db"
	"github.com/d9705996/hrportal/internal/model"
	"github.com/d9705996/hrportal/internal/seed"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))
	return gdb
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnsureAdmin_CreatesOnceOnly(t *testing.T) {
	gdb := openTestDB(t)
	opts := seed.AdminOptions{Email: "admin@hrportal.local", Password: "changeme"}

	require.NoError(t, seed.EnsureAdmin(context.Background(), gdb, opts, discard()))
	require.NoError(t, seed.EnsureAdmin(context.Background(), gdb, opts, discard()))

	var count int64
	require.NoError(t, gdb.Model(&model.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var u model.User
	require.NoError(t, gdb.Where("email = ?", "admin@hrportal.local").First(&u).Error)
	assert.Equal(t, model.RoleSuperAdmin, u.Role)
	assert.True(t, u.IsActive)
}

func TestEnsureDemoData_Idempotent(t *testing.T) {
	gdb := openTestDB(t)

	require.NoError(t, seed.EnsureDemoData(context.Background(), gdb, discard()))
	var first int64
	require.NoError(t, gdb.Model(&model.User{}).Count(&first).Error)
	assert.Positive(t, first)

	require.NoError(t, seed.EnsureDemoData(context.Background(), gdb, discard()))
	var second int64
	require.NoError(t, gdb.Model(&model.User{}).Count(&second).Error)
	assert.Equal(t, first, second)

	// The roster includes a vendor account outside the role hierarchy.
	var vendor model.User
	require.NoError(t, gdb.Where("role = ?", model.RoleVendor).First(&vendor).Error)

	var channels int64
	require.NoError(t, gdb.Model(&model.Channel{}).Count(&channels).Error)
	assert.EqualValues(t, 2, channels)
}
