package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/hospital-api/internal/models"
)

func TestStreamValues(t *testing.T) {
	entry := &models.ActivityLog{
		ID:        primitive.NewObjectID(),
		Activity:  "Admin rejected reservation",
		Date:      time.Date(2030, 3, 4, 5, 6, 7, 0, time.FixedZone("WAT", 3600)),
		SubjectID: primitive.NewObjectID(),
	}

	values := StreamValues(models.SubjectReservation, entry)

	assert.Equal(t, "reservation", values["subject"])
	assert.Equal(t, entry.SubjectID.Hex(), values["subject_id"])
	assert.Equal(t, entry.ID.Hex(), values["entry_id"])
	assert.Equal(t, "Admin rejected reservation", values["activity"])
	assert.Equal(t, "2030-03-04T04:06:07Z", values["date"])

	id, ok := values["event_id"].(string)
	require.True(t, ok)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, StreamValues(models.SubjectReservation, entry)["event_id"])
}
