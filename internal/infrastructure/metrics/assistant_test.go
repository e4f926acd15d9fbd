package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"github.com/iho/qatledger/internal/usecase"
	"github.com/iho/qatledger/internal/usecase/mocks"
)

func TestInstrumentAssistant(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := mocks.NewMockAssistant(ctrl)
	m := New(prometheus.NewRegistry())
	assistant := m.InstrumentAssistant(inner)
	ctx := context.Background()

	gomock.InOrder(
		inner.EXPECT().Propose(ctx, gomock.Any()).Return(&usecase.Command{Operation: usecase.OpRecordSale}, nil),
		inner.EXPECT().Propose(ctx, gomock.Any()).Return(nil, errors.New("timeout")),
	)

	cmd, err := assistant.Propose(ctx, usecase.AssistantRequest{Text: "sold 1"})
	if err != nil || cmd.Operation != usecase.OpRecordSale {
		t.Fatalf("expected pass-through command, got %+v err=%v", cmd, err)
	}
	if _, err := assistant.Propose(ctx, usecase.AssistantRequest{Text: "sold 2"}); err == nil {
		t.Fatalf("expected pass-through error")
	}

	if got := testutil.ToFloat64(m.AssistantResults.WithLabelValues("accepted")); got != 1 {
		t.Fatalf("expected one accepted proposal, got %v", got)
	}
	if got := testutil.ToFloat64(m.AssistantResults.WithLabelValues("rejected")); got != 1 {
		t.Fatalf("expected one rejected proposal, got %v", got)
	}
}
