// Package models defines the core domain models for UniPay.
//
// # Entities
//
//   - Organization: a fee-collecting student organization, arranged in a
//     two-level hierarchy (COLLEGE nodes with PROGRAM children)
//   - FeeType: a fee declared by an organization for an academic period
//   - Account / Student / Officer: one account may hold a student
//     identity, an officer identity, or both at once
//   - PaymentRequest: the QR-backed lifecycle entity
//     (PENDING -> PAID | CANCELLED | EXPIRED)
//   - Payment / Receipt: the immutable record of a redeemed request
//   - AcademicPeriod: the single "current period" configuration row
//
// # Design Principles
//
// 1. **Relationships by ID**: entities reference each other by UUID
// strings, never by pointer, so rows round-trip through storage cleanly.
// 2. **Decimal money**: all peso amounts are shopspring decimals; float
// money would drift on change calculations.
// 3. **Explicit role union**: an account's capability set is resolved
// once into an AccountRole instead of probing for profile records at
// every call site.
// 4. **Typed outcomes**: every user-facing rejection is a named sentinel
// error in this package so callers can tell invariants apart.
package models
