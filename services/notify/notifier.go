package notifysvc

import (
	"net/mail"
	"sync"

	"github.com/hajerbook/backend/core"
)

type logNotifier struct {
	logger core.Logger
	email  core.EmailService
	to     string
	app    string
}

var _ core.Notifier = (*logNotifier)(nil)

// NewNotifier logs every notification. Server-side failures are also
// emailed to conf.NotifyEmail when it is set.
func NewNotifier(logger core.Logger, email core.EmailService, conf *core.Config) core.Notifier {
	return &logNotifier{
		logger: logger,
		email:  email,
		to:     conf.NotifyEmail,
		app:    conf.AppName,
	}
}

func (n *logNotifier) Notify(notif core.Notification) {
	if notif.Success {
		n.logger.Info(notif.String())
		return
	}

	var args []interface{}
	if notif.Err != nil {
		args = append(args, notif.Err)
	}
	n.logger.Warn(notif.String(), args...)

	if notif.ClientError || n.to == "" || n.email == nil {
		return
	}
	n.email.SendMessages(&core.EmailMessage{
		To:          []mail.Address{{Address: n.to}},
		Subject:     notif.Action + " failed",
		TextContent: notif.String(),
	})
}

// Recorder keeps notifications in memory, for tests.
type Recorder struct {
	mu            sync.Mutex
	notifications []core.Notification
}

var _ core.Notifier = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(n core.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *Recorder) Notifications() []core.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Notification(nil), r.notifications...)
}

// Last returns the most recent notification.
func (r *Recorder) Last() (core.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notifications) == 0 {
		return core.Notification{}, false
	}
	return r.notifications[len(r.notifications)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = nil
}
