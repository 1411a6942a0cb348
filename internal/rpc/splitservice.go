// Package rpc defines the splitvault.v1.SplitService Connect surface: message
// types, procedure names, the handler constructor and a typed client.
//
// Messages are plain Go structs carried by a JSON codec, so any Connect or
// gRPC-Web JSON client (or curl) can talk to the service.
package rpc

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// SplitServiceName is the fully-qualified name of the SplitService service.
const SplitServiceName = "splitvault.v1.SplitService"

// Procedure paths, in the form "/Service/Method".
const (
	SplitServiceParseReceiptProcedure        = "/splitvault.v1.SplitService/ParseReceipt"
	SplitServiceValidateAssignmentsProcedure = "/splitvault.v1.SplitService/ValidateAssignments"
	SplitServiceCalculateSharesProcedure     = "/splitvault.v1.SplitService/CalculateShares"
	SplitServiceCalculateTotalProcedure      = "/splitvault.v1.SplitService/CalculateTotal"
	SplitServiceCreateSplitBillProcedure     = "/splitvault.v1.SplitService/CreateSplitBill"
	SplitServiceGetSplitBillProcedure        = "/splitvault.v1.SplitService/GetSplitBill"
	SplitServiceUpdateSplitBillProcedure     = "/splitvault.v1.SplitService/UpdateSplitBill"
	SplitServiceDeleteSplitBillProcedure     = "/splitvault.v1.SplitService/DeleteSplitBill"
	SplitServiceListSplitBillsProcedure      = "/splitvault.v1.SplitService/ListSplitBills"
	SplitServiceSettleUpProcedure            = "/splitvault.v1.SplitService/SettleUp"
)

// SplitServiceHandler is implemented by the server.
type SplitServiceHandler interface {
	ParseReceipt(context.Context, *connect.Request[ParseReceiptRequest]) (*connect.Response[ParseReceiptResponse], error)
	ValidateAssignments(context.Context, *connect.Request[ValidateAssignmentsRequest]) (*connect.Response[ValidateAssignmentsResponse], error)
	CalculateShares(context.Context, *connect.Request[CalculateSharesRequest]) (*connect.Response[CalculateSharesResponse], error)
	CalculateTotal(context.Context, *connect.Request[CalculateTotalRequest]) (*connect.Response[CalculateTotalResponse], error)
	CreateSplitBill(context.Context, *connect.Request[CreateSplitBillRequest]) (*connect.Response[CreateSplitBillResponse], error)
	GetSplitBill(context.Context, *connect.Request[GetSplitBillRequest]) (*connect.Response[GetSplitBillResponse], error)
	UpdateSplitBill(context.Context, *connect.Request[UpdateSplitBillRequest]) (*connect.Response[UpdateSplitBillResponse], error)
	DeleteSplitBill(context.Context, *connect.Request[DeleteSplitBillRequest]) (*connect.Response[DeleteSplitBillResponse], error)
	ListSplitBills(context.Context, *connect.Request[ListSplitBillsRequest]) (*connect.Response[ListSplitBillsResponse], error)
	SettleUp(context.Context, *connect.Request[SettleUpRequest]) (*connect.Response[SettleUpResponse], error)
}

// NewSplitServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewSplitServiceHandler(svc SplitServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	readOnly := append([]connect.HandlerOption{connect.WithIdempotency(connect.IdempotencyNoSideEffects)}, opts...)

	handlers := map[string]http.Handler{
		SplitServiceParseReceiptProcedure:        connect.NewUnaryHandler(SplitServiceParseReceiptProcedure, svc.ParseReceipt, opts...),
		SplitServiceValidateAssignmentsProcedure: connect.NewUnaryHandler(SplitServiceValidateAssignmentsProcedure, svc.ValidateAssignments, readOnly...),
		SplitServiceCalculateSharesProcedure:     connect.NewUnaryHandler(SplitServiceCalculateSharesProcedure, svc.CalculateShares, readOnly...),
		SplitServiceCalculateTotalProcedure:      connect.NewUnaryHandler(SplitServiceCalculateTotalProcedure, svc.CalculateTotal, readOnly...),
		SplitServiceCreateSplitBillProcedure:     connect.NewUnaryHandler(SplitServiceCreateSplitBillProcedure, svc.CreateSplitBill, opts...),
		SplitServiceGetSplitBillProcedure:        connect.NewUnaryHandler(SplitServiceGetSplitBillProcedure, svc.GetSplitBill, readOnly...),
		SplitServiceUpdateSplitBillProcedure:     connect.NewUnaryHandler(SplitServiceUpdateSplitBillProcedure, svc.UpdateSplitBill, opts...),
		SplitServiceDeleteSplitBillProcedure:     connect.NewUnaryHandler(SplitServiceDeleteSplitBillProcedure, svc.DeleteSplitBill, opts...),
		SplitServiceListSplitBillsProcedure:      connect.NewUnaryHandler(SplitServiceListSplitBillsProcedure, svc.ListSplitBills, readOnly...),
		SplitServiceSettleUpProcedure:            connect.NewUnaryHandler(SplitServiceSettleUpProcedure, svc.SettleUp, readOnly...),
	}

	return "/" + SplitServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// UnimplementedSplitServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedSplitServiceHandler struct{}

func unimplemented(procedure string) error {
	name := strings.ReplaceAll(strings.TrimPrefix(procedure, "/"), "/", ".")
	return connect.NewError(connect.CodeUnimplemented, errors.New(name+" is not implemented"))
}

func (UnimplementedSplitServiceHandler) ParseReceipt(context.Context, *connect.Request[ParseReceiptRequest]) (*connect.Response[ParseReceiptResponse], error) {
	return nil, unimplemented(SplitServiceParseReceiptProcedure)
}

func (UnimplementedSplitServiceHandler) ValidateAssignments(context.Context, *connect.Request[ValidateAssignmentsRequest]) (*connect.Response[ValidateAssignmentsResponse], error) {
	return nil, unimplemented(SplitServiceValidateAssignmentsProcedure)
}

func (UnimplementedSplitServiceHandler) CalculateShares(context.Context, *connect.Request[CalculateSharesRequest]) (*connect.Response[CalculateSharesResponse], error) {
	return nil, unimplemented(SplitServiceCalculateSharesProcedure)
}

func (UnimplementedSplitServiceHandler) CalculateTotal(context.Context, *connect.Request[CalculateTotalRequest]) (*connect.Response[CalculateTotalResponse], error) {
	return nil, unimplemented(SplitServiceCalculateTotalProcedure)
}

func (UnimplementedSplitServiceHandler) CreateSplitBill(context.Context, *connect.Request[CreateSplitBillRequest]) (*connect.Response[CreateSplitBillResponse], error) {
	return nil, unimplemented(SplitServiceCreateSplitBillProcedure)
}

func (UnimplementedSplitServiceHandler) GetSplitBill(context.Context, *connect.Request[GetSplitBillRequest]) (*connect.Response[GetSplitBillResponse], error) {
	return nil, unimplemented(SplitServiceGetSplitBillProcedure)
}

func (UnimplementedSplitServiceHandler) UpdateSplitBill(context.Context, *connect.Request[UpdateSplitBillRequest]) (*connect.Response[UpdateSplitBillResponse], error) {
	return nil, unimplemented(SplitServiceUpdateSplitBillProcedure)
}

func (UnimplementedSplitServiceHandler) DeleteSplitBill(context.Context, *connect.Request[DeleteSplitBillRequest]) (*connect.Response[DeleteSplitBillResponse], error) {
	return nil, unimplemented(SplitServiceDeleteSplitBillProcedure)
}

func (UnimplementedSplitServiceHandler) ListSplitBills(context.Context, *connect.Request[ListSplitBillsRequest]) (*connect.Response[ListSplitBillsResponse], error) {
	return nil, unimplemented(SplitServiceListSplitBillsProcedure)
}

func (UnimplementedSplitServiceHandler) SettleUp(context.Context, *connect.Request[SettleUpRequest]) (*connect.Response[SettleUpResponse], error) {
	return nil, unimplemented(SplitServiceSettleUpProcedure)
}

// SplitServiceClient is a client for the splitvault.v1.SplitService service.
type SplitServiceClient interface {
	ParseReceipt(context.Context, *connect.Request[ParseReceiptRequest]) (*connect.Response[ParseReceiptResponse], error)
	ValidateAssignments(context.Context, *connect.Request[ValidateAssignmentsRequest]) (*connect.Response[ValidateAssignmentsResponse], error)
	CalculateShares(context.Context, *connect.Request[CalculateSharesRequest]) (*connect.Response[CalculateSharesResponse], error)
	CalculateTotal(context.Context, *connect.Request[CalculateTotalRequest]) (*connect.Response[CalculateTotalResponse], error)
	CreateSplitBill(context.Context, *connect.Request[CreateSplitBillRequest]) (*connect.Response[CreateSplitBillResponse], error)
	GetSplitBill(context.Context, *connect.Request[GetSplitBillRequest]) (*connect.Response[GetSplitBillResponse], error)
	UpdateSplitBill(context.Context, *connect.Request[UpdateSplitBillRequest]) (*connect.Response[UpdateSplitBillResponse], error)
	DeleteSplitBill(context.Context, *connect.Request[DeleteSplitBillRequest]) (*connect.Response[DeleteSplitBillResponse], error)
	ListSplitBills(context.Context, *connect.Request[ListSplitBillsRequest]) (*connect.Response[ListSplitBillsResponse], error)
	SettleUp(context.Context, *connect.Request[SettleUpRequest]) (*connect.Response[SettleUpResponse], error)
}

// NewSplitServiceClient constructs a client for the splitvault.v1.SplitService
// service. baseURL is the server root, e.g. http://localhost:8080.
func NewSplitServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SplitServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &splitServiceClient{
		parseReceipt:        connect.NewClient[ParseReceiptRequest, ParseReceiptResponse](httpClient, baseURL+SplitServiceParseReceiptProcedure, opts...),
		validateAssignments: connect.NewClient[ValidateAssignmentsRequest, ValidateAssignmentsResponse](httpClient, baseURL+SplitServiceValidateAssignmentsProcedure, opts...),
		calculateShares:     connect.NewClient[CalculateSharesRequest, CalculateSharesResponse](httpClient, baseURL+SplitServiceCalculateSharesProcedure, opts...),
		calculateTotal:      connect.NewClient[CalculateTotalRequest, CalculateTotalResponse](httpClient, baseURL+SplitServiceCalculateTotalProcedure, opts...),
		createSplitBill:     connect.NewClient[CreateSplitBillRequest, CreateSplitBillResponse](httpClient, baseURL+SplitServiceCreateSplitBillProcedure, opts...),
		getSplitBill:        connect.NewClient[GetSplitBillRequest, GetSplitBillResponse](httpClient, baseURL+SplitServiceGetSplitBillProcedure, opts...),
		updateSplitBill:     connect.NewClient[UpdateSplitBillRequest, UpdateSplitBillResponse](httpClient, baseURL+SplitServiceUpdateSplitBillProcedure, opts...),
		deleteSplitBill:     connect.NewClient[DeleteSplitBillRequest, DeleteSplitBillResponse](httpClient, baseURL+SplitServiceDeleteSplitBillProcedure, opts...),
		listSplitBills:      connect.NewClient[ListSplitBillsRequest, ListSplitBillsResponse](httpClient, baseURL+SplitServiceListSplitBillsProcedure, opts...),
		settleUp:            connect.NewClient[SettleUpRequest, SettleUpResponse](httpClient, baseURL+SplitServiceSettleUpProcedure, opts...),
	}
}

type splitServiceClient struct {
	parseReceipt        *connect.Client[ParseReceiptRequest, ParseReceiptResponse]
	validateAssignments *connect.Client[ValidateAssignmentsRequest, ValidateAssignmentsResponse]
	calculateShares     *connect.Client[CalculateSharesRequest, CalculateSharesResponse]
	calculateTotal      *connect.Client[CalculateTotalRequest, CalculateTotalResponse]
	createSplitBill     *connect.Client[CreateSplitBillRequest, CreateSplitBillResponse]
	getSplitBill        *connect.Client[GetSplitBillRequest, GetSplitBillResponse]
	updateSplitBill     *connect.Client[UpdateSplitBillRequest, UpdateSplitBillResponse]
	deleteSplitBill     *connect.Client[DeleteSplitBillRequest, DeleteSplitBillResponse]
	listSplitBills      *connect.Client[ListSplitBillsRequest, ListSplitBillsResponse]
	settleUp            *connect.Client[SettleUpRequest, SettleUpResponse]
}

func (c *splitServiceClient) ParseReceipt(ctx context.Context, req *connect.Request[ParseReceiptRequest]) (*connect.Response[ParseReceiptResponse], error) {
	return c.parseReceipt.CallUnary(ctx, req)
}

func (c *splitServiceClient) ValidateAssignments(ctx context.Context, req *connect.Request[ValidateAssignmentsRequest]) (*connect.Response[ValidateAssignmentsResponse], error) {
	return c.validateAssignments.CallUnary(ctx, req)
}

func (c *splitServiceClient) CalculateShares(ctx context.Context, req *connect.Request[CalculateSharesRequest]) (*connect.Response[CalculateSharesResponse], error) {
	return c.calculateShares.CallUnary(ctx, req)
}

func (c *splitServiceClient) CalculateTotal(ctx context.Context, req *connect.Request[CalculateTotalRequest]) (*connect.Response[CalculateTotalResponse], error) {
	return c.calculateTotal.CallUnary(ctx, req)
}

func (c *splitServiceClient) CreateSplitBill(ctx context.Context, req *connect.Request[CreateSplitBillRequest]) (*connect.Response[CreateSplitBillResponse], error) {
	return c.createSplitBill.CallUnary(ctx, req)
}

func (c *splitServiceClient) GetSplitBill(ctx context.Context, req *connect.Request[GetSplitBillRequest]) (*connect.Response[GetSplitBillResponse], error) {
	return c.getSplitBill.CallUnary(ctx, req)
}

func (c *splitServiceClient) UpdateSplitBill(ctx context.Context, req *connect.Request[UpdateSplitBillRequest]) (*connect.Response[UpdateSplitBillResponse], error) {
	return c.updateSplitBill.CallUnary(ctx, req)
}

func (c *splitServiceClient) DeleteSplitBill(ctx context.Context, req *connect.Request[DeleteSplitBillRequest]) (*connect.Response[DeleteSplitBillResponse], error) {
	return c.deleteSplitBill.CallUnary(ctx, req)
}

func (c *splitServiceClient) ListSplitBills(ctx context.Context, req *connect.Request[ListSplitBillsRequest]) (*connect.Response[ListSplitBillsResponse], error) {
	return c.listSplitBills.CallUnary(ctx, req)
}

func (c *splitServiceClient) SettleUp(ctx context.Context, req *connect.Request[SettleUpRequest]) (*connect.Response[SettleUpResponse], error) {
	return c.settleUp.CallUnary(ctx, req)
}
