package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readingkg/readingkg-server/internal/domain"
)

func (s *Server) registerEventRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "recordFinished",
		Method:      http.MethodPost,
		Path:        "/api/v1/events/finished",
		Summary:     "Record finished",
		Description: "Appends a finished-reading event for a book",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRecordFinished)

	huma.Register(s.api, huma.Operation{
		OperationID: "recordEnded",
		Method:      http.MethodPost,
		Path:        "/api/v1/events/ended",
		Summary:     "Record ended",
		Description: "Appends an ended-without-finishing event with the reached completion",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRecordEnded)

	huma.Register(s.api, huma.Operation{
		OperationID: "undoEvent",
		Method:      http.MethodPost,
		Path:        "/api/v1/events/{id}/undo",
		Summary:     "Undo event",
		Description: "Cancels an event by appending a correction referencing it",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUndoEvent)

	huma.Register(s.api, huma.Operation{
		OperationID: "correctEvent",
		Method:      http.MethodPost,
		Path:        "/api/v1/events/{id}/correct",
		Summary:     "Correct event",
		Description: "Appends a correction carrying a revised completion value",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCorrectEvent)

	huma.Register(s.api, huma.Operation{
		OperationID: "listEvents",
		Method:      http.MethodGet,
		Path:        "/api/v1/events",
		Summary:     "List valid events",
		Description: "Returns valid events (corrections and corrected excluded), most recent first",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListEvents)

	huma.Register(s.api, huma.Operation{
		OperationID: "getState",
		Method:      http.MethodGet,
		Path:        "/api/v1/state",
		Summary:     "Get current state",
		Description: "Returns the most recent valid event and the next-book selection",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetState)

	huma.Register(s.api, huma.Operation{
		OperationID: "setNextSelection",
		Method:      http.MethodPut,
		Path:        "/api/v1/state/next",
		Summary:     "Select next book",
		Description: "Records the read-this-next pointer; an empty book ID clears it",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetNextSelection)
}

// === DTOs ===

// EventResponse contains reading event data in API responses.
type EventResponse struct {
	ID            string    `json:"id" doc:"Event ID"`
	BookID        string    `json:"book_id" doc:"Book the event refers to"`
	EventType     string    `json:"event_type" doc:"finished, ended, or correction"`
	OccurredAt    time.Time `json:"occurred_at" doc:"When the fact occurred"`
	Completion    int       `json:"completion" doc:"Completion percentage 0-100"`
	TargetEventID string    `json:"target_event_id,omitempty" doc:"Corrected event, for corrections"`
	ClientEventID string    `json:"client_event_id" doc:"Idempotency key"`
	CreatedAt     time.Time `json:"created_at" doc:"When the row was stored"`
}

func eventResponseFrom(e *domain.ReadingEvent) EventResponse {
	return EventResponse{
		ID:            e.ID,
		BookID:        e.BookID,
		EventType:     string(e.EventType),
		OccurredAt:    e.OccurredAt,
		Completion:    e.Completion,
		TargetEventID: e.TargetEventID,
		ClientEventID: e.ClientEventID,
		CreatedAt:     e.CreatedAt,
	}
}

// RecordResponse is the outcome of an event mutation.
type RecordResponse struct {
	Event  EventResponse `json:"event" doc:"The appended event"`
	Queued bool          `json:"queued" doc:"True when buffered offline instead of stored"`
}

// RecordOutput wraps the record response for Huma.
type RecordOutput struct {
	Body RecordResponse
}

// RecordFinishedInput wraps the record finished request for Huma.
type RecordFinishedInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		BookID string `json:"book_id" doc:"Book that was finished"`
	}
}

// RecordEndedInput wraps the record ended request for Huma.
type RecordEndedInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		BookID     string `json:"book_id" doc:"Book that was set aside"`
		Completion int    `json:"completion" doc:"Reached completion percentage 0-99"`
	}
}

// EventIDInput identifies an event by path.
type EventIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Event ID"`
}

// CorrectEventInput wraps the correct event request for Huma.
type CorrectEventInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Event ID to correct"`
	Body          struct {
		Completion int `json:"completion" doc:"Revised completion percentage"`
	}
}

// ListEventsInput contains parameters for listing valid events.
type ListEventsInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `query:"book_id" doc:"Narrow to one book"`
}

// ListEventsResponse contains a list of valid events.
type ListEventsResponse struct {
	Events []EventResponse `json:"events" doc:"Valid events, most recent first"`
}

// ListEventsOutput wraps the list events response for Huma.
type ListEventsOutput struct {
	Body ListEventsResponse
}

// StateResponse describes where the owner is: last valid event plus the
// explicit next-book selection.
type StateResponse struct {
	LastEvent *EventResponse     `json:"last_event,omitempty" doc:"Most recent valid event"`
	Next      *SelectionResponse `json:"next,omitempty" doc:"Next-book selection, if set"`
}

// SelectionResponse contains the next-book pointer.
type SelectionResponse struct {
	BookID    string    `json:"book_id,omitempty" doc:"Selected book; empty means cleared"`
	UpdatedAt time.Time `json:"updated_at" doc:"When the selection was recorded"`
}

// StateOutput wraps the state response for Huma.
type StateOutput struct {
	Body StateResponse
}

// StateInput contains parameters for reading the current state.
type StateInput struct {
	Authorization string `header:"Authorization"`
}

// SetNextInput wraps the next-selection request for Huma.
type SetNextInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		BookID string `json:"book_id" doc:"Book to read next; empty clears the selection"`
	}
}

// SelectionOutput wraps the selection response for Huma.
type SelectionOutput struct {
	Body SelectionResponse
}

// === Handlers ===

func (s *Server) handleRecordFinished(ctx context.Context, input *RecordFinishedInput) (*RecordOutput, error) {
	ownerID, err := s.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Events.RecordFinished(ctx, ownerID, input.Body.BookID)
	if err != nil {
		return nil, err
	}

	return &RecordOutput{Body: RecordResponse{
		Event:  eventResponseFrom(result.Event),
		Queued: result.Queued,
	}}, nil
}

func (s *Server) handleRecordEnded(ctx context.Context, input *RecordEndedInput) (*RecordOutput, error) {
	ownerID, err := s.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Events.RecordEnded(ctx, ownerID, input.Body.BookID, input.Body.Completion)
	if err != nil {
		return nil, err
	}

	return &RecordOutput{Body: RecordResponse{
		Event:  eventResponseFrom(result.Event),
		Queued: result.Queued,
	}}, nil
}

func (s *Server) handleUndoEvent(ctx context.Context, input *EventIDInput) (*RecordOutput, error) {
	ownerID, err := s.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Events.Undo(ctx, ownerID, input.ID)
	if err != nil {
		return nil, err
	}

	return &RecordOutput{Body: RecordResponse{
		Event:  eventResponseFrom(result.Event),
		Queued: result.Queued,
	}}, nil
}

func (s *Server) handleCorrectEvent(ctx context.Context, input *CorrectEventInput) (*RecordOutput, error) {
	ownerID, err := s.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Events.CorrectEvent(ctx, ownerID, input.ID, input.Body.Completion)
	if err != nil {
		return nil, err
	}

	return &RecordOutput{Body: RecordResponse{
		Event:  eventResponseFrom(result.Event),
		Queued: result.Queued,
	}}, nil
}

func (s *Server) handleListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
	ownerID, err := s.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	events, err := s.services.Events.ValidEvents(ctx, ownerID, input.BookID)
	if err != nil {
		return nil, err
	}

	resp := make([]EventResponse, len(events))
	for i, e := range events {
		resp[i] = eventResponseFrom(e)
	}

	return &ListEventsOutput{Body: ListEventsResponse{Events: resp}}, nil
}

func (s *Server) handleGetState(ctx context.Context, input *StateInput) (*StateOutput, error) {
	ownerID, err := s.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	state, err := s.services.Events.CurrentState(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	resp := StateResponse{}
	if state.LastEvent != nil {
		last := eventResponseFrom(state.LastEvent)
		resp.LastEvent = &last
	}
	if state.Next != nil {
		resp.Next = &SelectionResponse{
			BookID:    state.Next.BookID,
			UpdatedAt: state.Next.UpdatedAt,
		}
	}

	return &StateOutput{Body: resp}, nil
}

func (s *Server) handleSetNextSelection(ctx context.Context, input *SetNextInput) (*SelectionOutput, error) {
	ownerID, err := s.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	selection, err := s.services.Events.SelectNext(ctx, ownerID, input.Body.BookID)
	if err != nil {
		return nil, err
	}

	return &SelectionOutput{Body: SelectionResponse{
		BookID:    selection.BookID,
		UpdatedAt: selection.UpdatedAt,
	}}, nil
}
