package vo

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyTaskKeepsDecimalAndDates(t *testing.T) {
	task := models.Task{
		ID:            7,
		Title:         "design",
		Status:        enums.TaskStatusInProgress,
		EstimateHours: decimal.RequireFromString("12.5"),
		StartDate:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local),
	}

	var out Task
	require.NoError(t, Copy(&out, &task))
	assert.Equal(t, uint64(7), out.ID)
	assert.True(t, out.EstimateHours.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "2024-05-01", out.StartDate.String())
	assert.True(t, out.DueDate.IsZero())

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"due_date":null`)
}

func TestCopySlice(t *testing.T) {
	rows := []models.Department{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}
	out, err := CopySlice[models.Department, Department](rows)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[1].Name)
}

func TestTimePtr(t *testing.T) {
	assert.Nil(t, TimePtr(time.Time{}))
	now := time.Now()
	assert.Equal(t, now, *TimePtr(now))
}
