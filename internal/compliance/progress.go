package compliance

import "math"

// RequiredProgress derives the completion percentage from a checklist:
// uploaded required documents over required documents, rounded half-up. A
// checklist with no required documents is vacuously complete.
func RequiredProgress(docs []Document) int {
	required := 0
	uploaded := 0
	for _, doc := range docs {
		if !doc.Required {
			continue
		}
		required++
		if doc.Uploaded {
			uploaded++
		}
	}
	if required == 0 {
		return 100
	}
	return int(math.Round(float64(uploaded) / float64(required) * 100))
}

// ValidateDocuments checks a checklist before it is attached to a task.
// Name is the toggle handle, so every document needs one and no two may
// share it; a duplicate would make a single toggle flip several entries.
func ValidateDocuments(docs []Document) error {
	seen := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if doc.Name == "" {
			return &ValidationError{Field: "document", Message: "document name required"}
		}
		if _, ok := seen[doc.Name]; ok {
			return &ValidationError{Field: "document", Message: "duplicate document name: " + doc.Name}
		}
		seen[doc.Name] = struct{}{}
	}
	return nil
}

// ToggleDocument returns a copy of the task with the named document's
// uploaded flag replaced and progress recomputed. Reaching 100% promotes the
// status to completed; any other progress leaves the existing status alone,
// so a completed task never downgrades when a document is un-toggled later.
func ToggleDocument(task ComplianceTask, name string, uploaded bool) (ComplianceTask, error) {
	found := false
	docs := make([]Document, len(task.Documents))
	for i, doc := range task.Documents {
		if doc.Name == name {
			doc.Uploaded = uploaded
			found = true
		}
		docs[i] = doc
	}
	if !found {
		return task, &ValidationError{Field: "document", Message: "unknown document name: " + name}
	}

	task.Documents = docs
	task.Progress = RequiredProgress(docs)
	if task.Progress == 100 {
		task.Status = TaskStatusCompleted
	}
	return task, nil
}

// SubmitTask finalizes a task. Submission is only valid at exactly 100%
// progress; anything less is rejected with IncompleteTaskError and the task
// is returned unmodified.
func SubmitTask(task ComplianceTask) (ComplianceTask, error) {
	if task.Progress != 100 {
		return task, &IncompleteTaskError{TaskID: task.ID, Progress: task.Progress}
	}
	task.Status = TaskStatusCompleted
	return task, nil
}
