package publisher

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"olexparser/internal/core/model"
)

type NATSPublisher struct {
	nc      *nats.Conn
	prefix  string
	metrics PublisherMetrics
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

func NewNATSPublisher(url, subjectPrefix string, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("olexparser"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logrus.Warn("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			logrus.Info("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logrus.Info("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return &NATSPublisher{nc: nc, prefix: subjectPrefix, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

// CaseMessage announces a finished case analysis
type CaseMessage struct {
	ID          string         `json:"id"`
	Root        string         `json:"root"`
	AnalyzedAt  time.Time      `json:"analyzedAt"`
	Trips       int            `json:"trips"`
	Routes      int            `json:"routes"`
	Diagnostics map[string]int `json:"diagnostics"`
}

// NewCaseMessage summarizes a report for notification
func NewCaseMessage(r *model.CaseReport) CaseMessage {
	msg := CaseMessage{
		ID:          r.ID,
		Root:        r.Root,
		AnalyzedAt:  r.AnalyzedAt,
		Diagnostics: r.Counts,
	}
	for _, f := range r.TripFiles {
		msg.Trips += len(f.Trips)
	}
	for _, f := range r.RouteFiles {
		msg.Routes += len(f.Routes)
	}
	return msg
}

// Subject is the NATS subject a case notification is sent on
func Subject(prefix, id string) string {
	return prefix + ".analyzed." + subjectToken(id)
}

// PublishCaseAnalyzed sends a CaseMessage for report r
func (p *NATSPublisher) PublishCaseAnalyzed(r *model.CaseReport) error {
	subject := Subject(p.prefix, r.ID)
	b, err := json.Marshal(NewCaseMessage(r))
	if err != nil {
		return err
	}
	logrus.WithField("subject", subject).Debug("nats publish")

	start := time.Now()
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
