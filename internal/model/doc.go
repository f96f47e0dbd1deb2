// Package model defines the data shapes exchanged between the fetch
// session, the pagination controller and the artifact store.
//
// The listing service returns loosely shaped JSON: a listing's identifier
// may live under "zpid", under "id", or nested at hdpData.homeInfo.zpid,
// and numeric identifiers may be encoded as numbers or strings. Listing
// decodes the fields the crawler needs into explicit optional fields and
// keeps the original payload so artifacts are written back unchanged.
//
// Identifier resolution order is:
//  1. zpid
//  2. id
//  3. hdpData.homeInfo.zpid
//
// Identifiers are compared as normalized strings. A listing with none of
// them is kept but cannot be deduplicated.
package model
