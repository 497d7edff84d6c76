package errors

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// StackFrame is one frame of a captured call stack.
type StackFrame struct {
	Function string
	File     string
	Line     int
	Package  string
}

// Breadcrumb records a point-in-time event leading up to a failure.
type Breadcrumb struct {
	Timestamp time.Time
	Message   string
	Category  string
}

// Incident wraps a CoreError with the stack trace and breadcrumb trail
// active when it was raised, so a single top-level error can still produce
// a full incident chain in trace records (§7: "trace records carry the full
// incident chain").
type Incident struct {
	*CoreError
	StackTrace []StackFrame
	Breadcrumbs []Breadcrumb
	Timestamp  time.Time
}

// Tracker accumulates breadcrumbs for the lifetime of one export and stamps
// them onto any incident raised during that export.
type Tracker struct {
	maxBreadcrumbs int
	breadcrumbs    []Breadcrumb
}

// NewTracker creates a breadcrumb tracker retaining at most maxBreadcrumbs
// entries (oldest dropped first).
func NewTracker(maxBreadcrumbs int) *Tracker {
	if maxBreadcrumbs <= 0 {
		maxBreadcrumbs = 20
	}
	return &Tracker{maxBreadcrumbs: maxBreadcrumbs}
}

// Leave records a breadcrumb.
func (t *Tracker) Leave(message, category string) {
	t.breadcrumbs = append(t.breadcrumbs, Breadcrumb{Timestamp: time.Now(), Message: message, Category: category})
	if len(t.breadcrumbs) > t.maxBreadcrumbs {
		t.breadcrumbs = t.breadcrumbs[1:]
	}
}

// Wrap produces an Incident from a CoreError, capturing the current stack
// and the tracker's breadcrumb trail.
func (t *Tracker) Wrap(err *CoreError) *Incident {
	inc := &Incident{
		CoreError:  err,
		StackTrace: captureStackTrace(2, 32),
		Timestamp:  time.Now(),
	}
	if t != nil {
		inc.Breadcrumbs = append(inc.Breadcrumbs, t.breadcrumbs...)
	}
	return inc
}

func captureStackTrace(skip, maxDepth int) []StackFrame {
	frames := make([]StackFrame, 0, maxDepth)
	for i := skip; i < skip+maxDepth; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		funcName := fn.Name()
		var pkg string
		if idx := strings.LastIndex(funcName, "."); idx >= 0 {
			pkg = funcName[:idx]
			funcName = funcName[idx+1:]
		}
		frames = append(frames, StackFrame{Function: funcName, File: file, Line: line, Package: pkg})
	}
	return frames
}

func (i *Incident) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", i.Code, i.Message)
	if i.Cause != nil {
		fmt.Fprintf(&sb, " (cause: %s)", i.Cause.Error())
	}
	for _, b := range i.Breadcrumbs {
		fmt.Fprintf(&sb, "\n  - [%s] %s: %s", b.Timestamp.Format(time.RFC3339), b.Category, b.Message)
	}
	return sb.String()
}
