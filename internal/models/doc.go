// Package models defines the core domain models for splitvault.
//
// # Receipt models
//
//   - ParsedReceipt: what the receipt parser recovered from raw OCR text
//   - ParsedLineItem: one priced line of a parsed receipt
//   - ReceiptScan: a stored ParsedReceipt, keyed by a content hash of the text
//
// # Split models
//
//   - SplitBill: a bill with items, participants and tax/service-fee rates
//   - SplitItem: a unit price plus per-participant quantities
//   - SplitParticipant: a named person and their calculated share
//
// Participants are identified by name within a bill; SplitItem.AssignedQuantities
// is keyed by those names.
//
// # Money
//
// All amounts are decimal.Decimal. Rates (TaxPercent, ServiceFeePercent) are
// percentages, not amounts; see package money for the wrapper types that keep
// the two apart in calculations.
package models
