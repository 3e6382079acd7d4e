// Package asset picks the release asset to install for a platform.
//
// Selection is driven by an ordered list of rules, most specific first. The
// first rule that matches any asset wins, and among the assets it matches
// the first one in release order is chosen. Later rules are never evaluated
// once an earlier rule has matched.
//
// Rules are usually compiled from pattern templates. A template is a regular
// expression over the asset file name with two placeholders:
//
//	{arch}    the canonical architecture token, matched literally
//	{semver}  version digits, MAJOR.MINOR.PATCH only
//
// Architecture tokens are matched as literal substrings; there is no alias
// table, so an asset named "...-arm64-..." does not satisfy "aarch64".
package asset
