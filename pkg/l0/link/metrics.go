package link

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts link activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	FramesSent      prometheus.Counter
	FramesReceived  prometheus.Counter
	Retransmits     prometheus.Counter
	MismatchedBytes prometheus.Counter
}

// NewMetrics creates Metrics and registers them with reg if not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ethlink",
			Name:      name,
			Help:      help,
		})
	}
	m := &Metrics{
		FramesSent:      counter("frames_sent_total", "Frames sent on the link."),
		FramesReceived:  counter("frames_received_total", "Frames received from the link."),
		Retransmits:     counter("retransmits_total", "Frames resent after a receive timeout."),
		MismatchedBytes: counter("mismatched_bytes_total", "Payload bytes differing in echoed acknowledgements."),
	}
	if reg != nil {
		reg.MustRegister(m.FramesSent, m.FramesReceived, m.Retransmits, m.MismatchedBytes)
	}
	return m
}

func (m *Metrics) sent() {
	if m != nil {
		m.FramesSent.Inc()
	}
}

func (m *Metrics) received() {
	if m != nil {
		m.FramesReceived.Inc()
	}
}

func (m *Metrics) retransmitted() {
	if m != nil {
		m.Retransmits.Inc()
	}
}

func (m *Metrics) mismatched(n int) {
	if m != nil && n > 0 {
		m.MismatchedBytes.Add(float64(n))
	}
}
