package task

// CreateTaskRequest is the body of POST /tasks. An empty Status means StatusToDo.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	AssignedTo  string `json:"assignedTo,omitempty"`
	Status      Status `json:"status,omitempty"`
}

func (r *CreateTaskRequest) Validate() error {
	if isBlank(r.Title) {
		return newValidationError("title is required")
	}
	if r.Status != "" && !r.Status.Valid() {
		return newInvalidStatusError(string(r.Status))
	}
	return nil
}

func (r *CreateTaskRequest) status() Status {
	if r.Status == "" {
		return StatusToDo
	}
	return r.Status
}

// UpdateTaskRequest is the body of PUT /tasks/{id}. Absent fields are left
// untouched; an empty assignedTo or description clears the field.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	AssignedTo  *string `json:"assignedTo,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

func (r *UpdateTaskRequest) Validate() error {
	p := r.Patch()
	if p.Empty() {
		return newValidationError("at least one of title, description, assignedTo or status is required")
	}
	return p.Validate()
}

func (r *UpdateTaskRequest) Patch() *Patch {
	return &Patch{
		Title:       r.Title,
		Description: r.Description,
		AssignedTo:  r.AssignedTo,
		Status:      r.Status,
	}
}

// TransitionRequest is the body of PUT /tasks/{id}/move.
type TransitionRequest struct {
	Status Status `json:"status"`
}

func (r *TransitionRequest) Validate() error {
	if r.Status == "" {
		return newValidationError("status is required")
	}
	if !r.Status.Valid() {
		return newInvalidStatusError(string(r.Status))
	}
	return nil
}

// ListFilter narrows ListTasks. The zero value lists everything.
type ListFilter struct {
	Status Status
}

func (f ListFilter) Validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return newInvalidStatusError(string(f.Status))
	}
	return nil
}

type DeleteTaskResponse struct {
	Message string `json:"message"`
}
