package writer

import "errors"

var (
	// ErrQueueClosed — задача поставлена после Close.
	ErrQueueClosed = errors.New("writer queue is closed")
	// ErrQueueFull — очередь заполнена, а ждать места нельзя (постановка изнутри задачи писателя).
	ErrQueueFull = errors.New("writer queue is full")
	// ErrWaitOnWriter — попытка синхронно ждать результат из горутины писателя.
	ErrWaitOnWriter = errors.New("cannot wait for a write from inside the writer")
	// ErrWaitTimeout — результат не получен за отведённое время; запись при этом не отменяется.
	ErrWaitTimeout = errors.New("timed out waiting for write result")
)

// Status — вариант результата записи.
type Status int

const (
	// StatusCompleted — движок выполнил запись; Value — id или число строк.
	StatusCompleted Status = iota
	// StatusRejected — запись отклонена валидатором и до движка не дошла.
	StatusRejected
	// StatusTimedOut — вызывающий перестал ждать; запись может завершиться позже.
	StatusTimedOut
	// StatusFailed — ошибка движка или очереди.
	StatusFailed
	// StatusCanceled — контекст вызывающего отменён до получения результата.
	StatusCanceled
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusRejected:
		return "rejected"
	case StatusTimedOut:
		return "timed_out"
	case StatusFailed:
		return "failed"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Outcome — результат записи. Value у отклонённой вставки равен -1, у отклонённого обновления 0;
// у TimedOut Value всегда 0, поэтому отличать таймаут от "0 строк" нужно по Status.
type Outcome struct {
	Value  int64
	Status Status
	Err    error
}

// OK сообщает, выполнена ли запись движком.
func (o Outcome) OK() bool {
	return o.Status == StatusCompleted
}

// Completed строит успешный результат.
func Completed(value int64) Outcome {
	return Outcome{Value: value, Status: StatusCompleted}
}

// Rejected строит результат отказа валидации.
func Rejected(value int64, err error) Outcome {
	return Outcome{Value: value, Status: StatusRejected, Err: err}
}

// Failed строит результат ошибки.
func Failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}

type rejection struct {
	err error
}

func (r *rejection) Error() string { return r.err.Error() }
func (r *rejection) Unwrap() error { return r.err }

// Reject помечает ошибку задачи как штатный отказ: запись не выполнена,
// но это не сбой движка и в лог ошибок не попадает.
func Reject(err error) error {
	if err == nil {
		return nil
	}
	return &rejection{err: err}
}

func isRejection(err error) bool {
	var r *rejection
	return errors.As(err, &r)
}
