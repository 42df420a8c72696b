// Package policy holds the pure membership rules: the account status state
// machine, the role authority, the profile field visibility table, the
// promotion eligibility thresholds and the guest access gate.
//
// Nothing here touches storage or logs. Services load the records, call the
// rules and turn a denial into a typed error.
package policy
