// Package morocco holds the Moroccan business rules shared by the form layer
// and the API: identity and bank identifier formats, phone normalization,
// TVA rates, invoice numbering and the agricultural calendar.
//
// Every function here is pure and total. Validators return booleans and
// formatters return a best-effort value; callers decide how to report a
// failure.
package morocco
