package service

import (
	"bytes"
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/receiptsplit/internal/api"
	"github.com/mmynk/receiptsplit/internal/calculator"
	"github.com/mmynk/receiptsplit/internal/export"
	"github.com/mmynk/receiptsplit/internal/models"
)

// draftReceiptID names exports of inline, unsaved receipts.
const draftReceiptID = "draft"

// ExportSplit computes an allocation and renders it as a CSV or XLSX file.
func (s *ReceiptService) ExportSplit(
	ctx context.Context,
	req *connect.Request[api.ExportSplitRequest],
) (*connect.Response[api.ExportSplitResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(req.Msg.Format)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	alloc, err := s.allocate(ctx, "ExportSplit", req.Msg.SplitRequest)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, export.Rows(req.Msg.Participants, alloc.Totals())); err != nil {
		return nil, toConnectError("ExportSplit", err)
	}

	receiptID := req.Msg.ReceiptID
	if receiptID == "" {
		receiptID = draftReceiptID
	}
	slog.Info("Split exported", "receipt_id", receiptID, "format", string(format), "bytes", buf.Len())
	return connect.NewResponse(&api.ExportSplitResponse{
		Filename:    format.Filename(receiptID),
		ContentType: format.ContentType(),
		Data:        buf.Bytes(),
	}), nil
}

// allocate resolves the receipt the request refers to and runs the
// allocation engine on it.
func (s *ReceiptService) allocate(ctx context.Context, op string, req api.SplitRequest) (*calculator.Allocation, error) {
	in := calculator.AllocationInput{
		LineItems:          req.LineItems,
		Subtotal:           req.Subtotal,
		Tax:                req.Tax,
		Tip:                req.Tip,
		Total:              req.Total,
		Participants:       req.Participants,
		Assignment:         req.Assignment,
		ProportionalTaxTip: req.ProportionalTaxTip,
	}
	if req.ReceiptID != "" {
		receipt, err := s.visibleReceipt(ctx, op, req.ReceiptID)
		if err != nil {
			return nil, err
		}
		in.LineItems = receipt.LineItems
		in.Subtotal = receipt.Subtotal
		in.Tax = receipt.Tax
		in.Tip = receipt.Tip
		in.Total = receipt.Total
	}

	alloc, err := calculator.Allocate(in)
	if err != nil {
		return nil, toConnectError(op, err)
	}

	var reconciled int64
	for _, sh := range alloc.Shares {
		reconciled += abs(sh.Adjustment)
	}
	s.metrics.ObserveAllocation(alloc.Meta.Scaled, reconciled)
	slog.Debug("Allocation computed",
		"op", op,
		"total_cents", alloc.Meta.Total,
		"scaled", alloc.Meta.Scaled,
		"reconciled_cents", reconciled,
	)
	return alloc, nil
}

func newCalculateResponse(participants []models.Participant, alloc *calculator.Allocation) *api.CalculateSplitResponse {
	names := make(map[string]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.Name
	}
	shares := make([]api.Share, len(alloc.Shares))
	for i, sh := range alloc.Shares {
		shares[i] = api.Share{
			ParticipantID: sh.ParticipantID,
			Name:          names[sh.ParticipantID],
			Items:         calculator.FromCents(sh.Items),
			Tax:           calculator.FromCents(sh.Tax),
			Tip:           calculator.FromCents(sh.Tip),
			Adjustment:    calculator.FromCents(sh.Adjustment),
			Total:         calculator.FromCents(sh.Total),
		}
	}
	return &api.CalculateSplitResponse{
		Totals: alloc.Totals(),
		Shares: shares,
		Meta:   alloc.Meta.Decimal(),
	}
}

func abs(c int64) int64 {
	if c < 0 {
		return -c
	}
	return c
}
