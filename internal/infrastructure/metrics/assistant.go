package metrics

import (
	"context"

	"github.com/iho/qatledger/internal/usecase"
)

type instrumentedAssistant struct {
	usecase.Assistant
	m *Metrics
}

// InstrumentAssistant counts the outcome of every proposal request.
func (m *Metrics) InstrumentAssistant(a usecase.Assistant) usecase.Assistant {
	return &instrumentedAssistant{Assistant: a, m: m}
}

func (a *instrumentedAssistant) Propose(ctx context.Context, req usecase.AssistantRequest) (*usecase.Command, error) {
	cmd, err := a.Assistant.Propose(ctx, req)
	a.m.ObserveProposal(err)
	return cmd, err
}
