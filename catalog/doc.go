// Package catalog holds the books the library owns.
//
// The circulation core only asks the catalog whether a book id exists. The field queries
// serve the outer surfaces.
//
// The catalog file starts with a header line, followed by one book per line:
//
//	ID;GENRE;TITLE;AUTHOR;PRICE;PURCHASE_DATE
//	1;Fantasy;The Hobbit;J.R.R. Tolkien;12;2021-03-04
//
// Fields are separated by semicolons and trimmed. PRICE is a whole amount in GBP,
// PURCHASE_DATE is a calendar day in YYYY-MM-DD form.
package catalog
