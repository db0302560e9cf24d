/*

Package unichan defines the primitives shared by the payment channel
extension and its supporting packages: account addresses, conditions,
time, amounts, storage interfaces, genesis options and authentication.

The channel logic itself lives in x/paychan. The ledger that holds the
locked deposits lives in x/cash.

*/

package unichan
