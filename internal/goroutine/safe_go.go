package goroutine

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
)

// Logger интерфейс для логирования ошибок из горутин.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// RecoveryHandler запускает горутины с перехватом panic.
// Используется для фоновой доставки уведомлений и периодических обходов,
// где упавшая горутина не должна ронять процесс.
type RecoveryHandler struct {
	logger Logger
}

// NewRecoveryHandler создаёт новый обработчик.
func NewRecoveryHandler(logger Logger) *RecoveryHandler {
	return &RecoveryHandler{logger: logger}
}

// SafeGo запускает горутину с обработкой panic.
func (rh *RecoveryHandler) SafeGo(fn func()) {
	go func() {
		defer rh.recoverPanic()
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic.
func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer rh.recoverPanic()
		fn(ctx)
	}()
}

func (rh *RecoveryHandler) recoverPanic() {
	if r := recover(); r != nil {
		rh.logger.Errorf("panic в горутине: %v\nstack:\n%s", r, debug.Stack())
	}
}

// stderrLogger пишет в stderr без зависимости от глобального логгера,
// чтобы пакет можно было использовать до его инициализации.
type stderrLogger struct{}

func (l *stderrLogger) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[ERROR] "+format+"\n", args...)
}

// DefaultRecoveryHandler — глобальный обработчик по умолчанию.
var DefaultRecoveryHandler = NewRecoveryHandler(&stderrLogger{})

// SafeGo запускает безопасную горутину через обработчик по умолчанию.
func SafeGo(fn func()) {
	DefaultRecoveryHandler.SafeGo(fn)
}

// SafeGoWithContext запускает безопасную горутину с контекстом.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	DefaultRecoveryHandler.SafeGoWithContext(ctx, fn)
}
