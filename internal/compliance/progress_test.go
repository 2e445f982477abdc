package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredProgress(t *testing.T) {
	t.Run("no required documents is complete", func(t *testing.T) {
		assert.Equal(t, 100, RequiredProgress(nil))
		assert.Equal(t, 100, RequiredProgress([]Document{
			{Name: "optional notes", Required: false, Uploaded: false},
		}))
	})

	t.Run("optional documents never count", func(t *testing.T) {
		docs := []Document{
			{Name: "certificate", Required: true, Uploaded: true},
			{Name: "notes", Required: false, Uploaded: false},
		}
		assert.Equal(t, 100, RequiredProgress(docs))
	})

	t.Run("rounds half up", func(t *testing.T) {
		docs := []Document{
			{Name: "a", Required: true, Uploaded: true},
			{Name: "b", Required: true, Uploaded: false},
			{Name: "c", Required: true, Uploaded: false},
		}
		// 1/3 rounds to 33, 2/3 rounds to 67
		assert.Equal(t, 33, RequiredProgress(docs))
		docs[1].Uploaded = true
		assert.Equal(t, 67, RequiredProgress(docs))
	})

	t.Run("always within bounds", func(t *testing.T) {
		for uploaded := 0; uploaded <= 7; uploaded++ {
			docs := make([]Document, 7)
			for i := range docs {
				docs[i] = Document{Name: string(rune('a' + i)), Required: true, Uploaded: i < uploaded}
			}
			p := RequiredProgress(docs)
			assert.GreaterOrEqual(t, p, 0)
			assert.LessOrEqual(t, p, 100)
			if uploaded == 7 {
				assert.Equal(t, 100, p)
			} else {
				assert.Less(t, p, 100)
			}
		}
	})
}

func TestValidateDocuments(t *testing.T) {
	t.Run("accepts a well-formed checklist", func(t *testing.T) {
		assert.NoError(t, ValidateDocuments(nil))
		assert.NoError(t, ValidateDocuments([]Document{
			{Name: "evidence", Required: true},
			{Name: "attestation", Required: true},
		}))
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		// a duplicate would let one toggle flip both entries and
		// double-count progress
		err := ValidateDocuments([]Document{
			{Name: "evidence", Required: true},
			{Name: "evidence", Required: true},
			{Name: "attestation", Required: true},
		})
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "document", validationErr.Field)
		assert.Contains(t, validationErr.Message, "evidence")
	})

	t.Run("rejects unnamed documents", func(t *testing.T) {
		err := ValidateDocuments([]Document{{Name: "", Required: true}})
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestToggleDocument(t *testing.T) {
	base := ComplianceTask{
		ID:     "task-1",
		Title:  "Annual Security Training",
		Status: TaskStatusInProgress,
		Documents: []Document{
			{Name: "completion certificate", Required: true, Uploaded: true},
			{Name: "signed attestation", Required: true, Uploaded: false},
		},
	}
	base.Progress = RequiredProgress(base.Documents)
	require.Equal(t, 50, base.Progress)

	t.Run("uploading the last required document completes the task", func(t *testing.T) {
		updated, err := ToggleDocument(base, "signed attestation", true)
		require.NoError(t, err)
		assert.Equal(t, 100, updated.Progress)
		assert.Equal(t, TaskStatusCompleted, updated.Status)

		// input untouched
		assert.Equal(t, 50, base.Progress)
		assert.Equal(t, TaskStatusInProgress, base.Status)
		assert.False(t, base.Documents[1].Uploaded)
	})

	t.Run("below full progress the status is left alone", func(t *testing.T) {
		updated, err := ToggleDocument(base, "completion certificate", false)
		require.NoError(t, err)
		assert.Equal(t, 0, updated.Progress)
		assert.Equal(t, TaskStatusInProgress, updated.Status)
	})

	t.Run("completed status never downgrades", func(t *testing.T) {
		completed, err := ToggleDocument(base, "signed attestation", true)
		require.NoError(t, err)
		require.Equal(t, TaskStatusCompleted, completed.Status)

		reverted, err := ToggleDocument(completed, "signed attestation", false)
		require.NoError(t, err)
		assert.Equal(t, 50, reverted.Progress)
		assert.Equal(t, TaskStatusCompleted, reverted.Status)
	})

	t.Run("toggling is idempotent", func(t *testing.T) {
		once, err := ToggleDocument(base, "signed attestation", true)
		require.NoError(t, err)
		twice, err := ToggleDocument(once, "signed attestation", true)
		require.NoError(t, err)
		assert.Equal(t, once.Progress, twice.Progress)
		assert.Equal(t, once.Documents, twice.Documents)
	})

	t.Run("unknown document name is rejected", func(t *testing.T) {
		_, err := ToggleDocument(base, "missing document", true)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "document", validationErr.Field)
	})
}

func TestSubmitTask(t *testing.T) {
	t.Run("rejects incomplete task and leaves it unchanged", func(t *testing.T) {
		task := ComplianceTask{ID: "task-2", Status: TaskStatusInProgress, Progress: 60}
		out, err := SubmitTask(task)

		var incompleteErr *IncompleteTaskError
		require.ErrorAs(t, err, &incompleteErr)
		assert.Equal(t, "task-2", incompleteErr.TaskID)
		assert.Equal(t, 60, incompleteErr.Progress)
		assert.Equal(t, TaskStatusInProgress, out.Status)
	})

	t.Run("accepts fully complete task", func(t *testing.T) {
		task := ComplianceTask{ID: "task-3", Status: TaskStatusInProgress, Progress: 100}
		out, err := SubmitTask(task)
		require.NoError(t, err)
		assert.Equal(t, TaskStatusCompleted, out.Status)
	})
}
