// Package models holds the data types shared by the catalog server and the
// sync client, together with their JSON wire shapes.
//
// Wire field names are fixed: directory nodes serialize as
// {"Name","Count","Children"} and file entries as {"Path","Size","Time","Delete"}.
package models
