package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.February, 29), d)
	assert.Equal(t, "2024-02-29", d.String())

	for _, raw := range []string{"2023-02-29", "2024-2-29", "2024-02-29T00:00:00Z", "29/02/2024", ""} {
		_, err := ParseDate(raw)
		assert.True(t, IsDomainError(err, ErrCodeInvalid), raw)
	}
}

func TestDateJSON(t *testing.T) {
	payload, err := json.Marshal(struct {
		Day Date `json:"day"`
	}{Day: NewDate(2026, time.January, 5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2026-01-05"}`, string(payload))

	var out struct {
		Day Date `json:"day"`
	}
	require.NoError(t, json.Unmarshal(payload, &out))
	assert.True(t, out.Day.InMonth(2026, time.January))
	assert.Error(t, json.Unmarshal([]byte(`{"day":"2026-13-01"}`), &out))
}

func TestDateOfUsesUTC(t *testing.T) {
	zone := time.FixedZone("UTC+10", 10*60*60)
	local := time.Date(2026, time.March, 1, 5, 0, 0, 0, zone)
	assert.Equal(t, NewDate(2026, time.February, 28), DateOf(local))
	assert.True(t, Date{}.IsZero())
}

func TestActivityInputValidate(t *testing.T) {
	ok := ActivityInput{Name: " Run ", Icon: " 🏃 "}.Normalize()
	assert.Equal(t, "Run", ok.Name)
	assert.NoError(t, ok.Validate())

	assert.Error(t, ActivityInput{Name: "Run", Icon: "x"}.Validate())
	assert.Error(t, ActivityInput{Name: strings.Repeat("r", 101), Icon: "🏃"}.Validate())
	assert.NoError(t, ValidateIcon(DefaultActivityIcon))
}

func TestArchiveRestore(t *testing.T) {
	a := &Activity{ID: "a", UserID: "u", IsActive: true}
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, a.Archive(now))
	assert.False(t, a.IsActive)
	require.NotNil(t, a.ArchivedAt)
	assert.True(t, IsDomainError(a.Archive(now), ErrCodeConflict))

	require.NoError(t, a.Restore())
	assert.Nil(t, a.ArchivedAt)
	assert.True(t, IsDomainError(a.Restore(), ErrCodeConflict))

	assert.True(t, a.OwnedBy("u"))
	assert.False(t, a.OwnedBy(""))
}

func TestWrappedDomainErrors(t *testing.T) {
	wrapped := WrapError(ErrCodeInvalid, "bad", errors.New("cause"))
	assert.True(t, IsDomainError(wrapped, ErrCodeInvalid))
	assert.False(t, IsDomainError(errors.New("plain"), ErrCodeInvalid))
}
