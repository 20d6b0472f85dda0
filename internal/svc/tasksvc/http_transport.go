package tasksvc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/everyio/tasktracker/internal/domain"
	context_ "github.com/everyio/tasktracker/internal/infra/context"
	"github.com/everyio/tasktracker/internal/infra/logging"
	http_ "github.com/everyio/tasktracker/internal/infra/transport/http"
)

// Operation names served by HTTPTransport.
const (
	OperationTaskAll          = "taskAll"
	OperationTaskOne          = "taskOne"
	OperationTaskCreate       = "taskCreate"
	OperationTaskUpdateStatus = "taskUpdateStatus"
)

// HTTPTransport handles HTTP requests for the task service.
type HTTPTransport struct {
	taskSvc *TaskService
	log     logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(taskSvc *TaskService) *HTTPTransport {
	return &HTTPTransport{
		taskSvc: taskSvc,
		log:     logging.GetLogger("svc.tasksvc.http_transport"),
	}
}

// Routes registers the task service operations on mux:
// - POST /api/taskAll: List the caller's tasks
// - POST /api/taskOne: Get one of the caller's tasks
// - POST /api/taskCreate: Create a task
// - POST /api/taskUpdateStatus: Move a task to another status.
func (ht *HTTPTransport) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/"+OperationTaskAll, ht.HandleTaskAll)
	mux.HandleFunc("POST /api/"+OperationTaskOne, ht.HandleTaskOne)
	mux.HandleFunc("POST /api/"+OperationTaskCreate, ht.HandleTaskCreate)
	mux.HandleFunc("POST /api/"+OperationTaskUpdateStatus, ht.HandleTaskUpdateStatus)
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	ht.Routes(mux)
	mux.ServeHTTP(w, r)
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

type taskOneArgs struct {
	TaskID string `json:"taskId"`
}

type taskCreateArgs struct {
	Input domain.TaskCreateInput `json:"input"`
}

type taskUpdateStatusArgs struct {
	TaskID     string `json:"taskId"`
	TaskStatus string `json:"taskStatus"`
}

// respond writes the outcome of an operation and logs failures.
func (ht *HTTPTransport) respond(
	ctx context.Context,
	w http.ResponseWriter,
	log logging.Logger,
	operation string,
	result any,
	err error,
) {
	if err != nil {
		log.Log(ctx, http_.ErrorLevel(err), operation+" failed", "error", err)
		_ = http_.WriteError(w, err)

		return
	}

	if err := http_.WriteData(w, operation, result); err != nil {
		log.ErrorContext(ctx, "write response failed", "error", err)
	}
}

func (ht *HTTPTransport) requestLog(r *http.Request) logging.Logger {
	return ht.log.With(
		logging.Group("http", "method", r.Method, "url", r.URL.String()),
		logging.UserAttr(context_.UserFromContext(r.Context())),
	)
}

// HandleTaskAll returns the caller's tasks.
func (ht *HTTPTransport) HandleTaskAll(w http.ResponseWriter, r *http.Request) {
	tasks, err := ht.taskSvc.All(r.Context(), context_.UserFromContext(r.Context()))

	ht.respond(r.Context(), w, ht.requestLog(r), OperationTaskAll, tasks, err)
}

// HandleTaskOne returns the task with the given ID.
// Expects JSON arguments: taskId.
func (ht *HTTPTransport) HandleTaskOne(w http.ResponseWriter, r *http.Request) {
	task, err := ht.handleTaskOne(r)

	ht.respond(r.Context(), w, ht.requestLog(r), OperationTaskOne, task, err)
}

func (ht *HTTPTransport) handleTaskOne(r *http.Request) (*domain.Task, error) {
	args, err := http_.DecodeArgs[taskOneArgs](r)
	if err != nil {
		return nil, err
	}

	task, err := ht.taskSvc.One(r.Context(), context_.UserFromContext(r.Context()), args.TaskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	return task, nil
}

// HandleTaskCreate creates a task owned by the caller.
// Expects JSON arguments: input{title, description}.
func (ht *HTTPTransport) HandleTaskCreate(w http.ResponseWriter, r *http.Request) {
	task, err := ht.handleTaskCreate(r)

	ht.respond(r.Context(), w, ht.requestLog(r), OperationTaskCreate, task, err)
}

func (ht *HTTPTransport) handleTaskCreate(r *http.Request) (*domain.Task, error) {
	args, err := http_.DecodeArgs[taskCreateArgs](r)
	if err != nil {
		return nil, err
	}

	task, err := ht.taskSvc.Create(r.Context(), context_.UserFromContext(r.Context()), args.Input)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return task, nil
}

// HandleTaskUpdateStatus moves a task to another status.
// Expects JSON arguments: taskId, taskStatus.
func (ht *HTTPTransport) HandleTaskUpdateStatus(w http.ResponseWriter, r *http.Request) {
	task, err := ht.handleTaskUpdateStatus(r)

	ht.respond(r.Context(), w, ht.requestLog(r), OperationTaskUpdateStatus, task, err)
}

func (ht *HTTPTransport) handleTaskUpdateStatus(r *http.Request) (*domain.Task, error) {
	args, err := http_.DecodeArgs[taskUpdateStatusArgs](r)
	if err != nil {
		return nil, err
	}

	task, err := ht.taskSvc.UpdateStatus(
		r.Context(),
		context_.UserFromContext(r.Context()),
		args.TaskID,
		domain.TaskStatus(args.TaskStatus),
	)
	if err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}

	return task, nil
}
