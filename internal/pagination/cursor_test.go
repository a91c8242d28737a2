package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	c, err := Parse("", "", "", "", 20, 100)
	require.NoError(t, err)
	assert.Nil(t, c.CreatedAtLT)
	assert.Nil(t, c.CreatedAtGT)
	assert.Empty(t, c.IDLT)
	assert.Equal(t, 20, c.PageSize)
}

func TestParseOlderPageCursor(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)
	c, err := Parse(ts.Format(TimeLayout), "", "feed-42", "50", 20, 100)
	require.NoError(t, err)
	require.NotNil(t, c.CreatedAtLT)
	assert.True(t, ts.Equal(*c.CreatedAtLT))
	assert.Equal(t, "feed-42", c.IDLT)
	assert.Equal(t, 50, c.PageSize)
}

func TestParseNewerCursor(t *testing.T) {
	ts := time.Now().UTC().Truncate(time.Millisecond)
	c, err := Parse("", ts.Format(TimeLayout), "", "", 20, 100)
	require.NoError(t, err)
	require.NotNil(t, c.CreatedAtGT)
	assert.True(t, ts.Equal(*c.CreatedAtGT))
}

func TestParseRejectsBadInput(t *testing.T) {
	_, err := Parse("yesterday", "", "", "", 20, 100)
	assert.ErrorIs(t, err, ErrBadCursor)

	_, err = Parse("", "not-a-time", "", "", 20, 100)
	assert.ErrorIs(t, err, ErrBadCursor)

	_, err = Parse("", "", "", "0", 20, 100)
	assert.ErrorIs(t, err, ErrBadCursor)

	_, err = Parse("", "", "", "abc", 20, 100)
	assert.ErrorIs(t, err, ErrBadCursor)
}

// 超出上限静默截断，不报错
func TestParseClampsOversizedPage(t *testing.T) {
	c, err := Parse("", "", "", "5000", 20, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, c.PageSize)
}

func TestClamp(t *testing.T) {
	c := Cursor{PageSize: -3}
	c.Clamp(20, 100)
	assert.Equal(t, 20, c.PageSize)

	c = Cursor{PageSize: 999}
	c.Clamp(20, 100)
	assert.Equal(t, 100, c.PageSize)

	c = Cursor{PageSize: 40}
	c.Clamp(20, 100)
	assert.Equal(t, 40, c.PageSize)
}
