/*
Package assettrack keeps tax lots of precious metals and crypto currencies and
computes the capital gains realized when they are sold.

Custodians report purchases, sales, transfers and fees as [Transaction]
values. An [Inventory] applies them in date order:

  - duplicate transfer reports are dropped ([ScrubDuplicates]);
  - inbound transfers are paired with the outbound leg reported by the other
    custodian ([ReconcileTransfers]), legs without counterparty are set aside;
  - optionally, sales and purchases close in time are folded into like-kind
    exchanges (an [ExchangeMatcher]);
  - each purchase opens a [Lot], sales deplete lots first in first out and
    produce one [TaxableSale] per lot slice, transfers move or split lots,
    fees reduce a lot's measure or raise its basis.

Weights are kept in the unit of each lot, grams or troy ounces, and converted
on demand. Amounts are decimal, never floating point.

The results are written as tab separated exports (see [WriteGains]) or read
through the accessors of the Inventory.
*/
package assettrack
