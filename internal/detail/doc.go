// Package detail turns a rendered listing detail page into a record.
//
// ExtractRaw pulls the embedded __NEXT_DATA__ document, which is required,
// and any visible score texts, which are optional. Parse reduces the raw
// document to a Record: crawl metadata, the basic facts of the property
// and the full document for later processing.
package detail
