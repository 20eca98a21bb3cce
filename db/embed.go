// Package db embeds the relational schema for the order domain.
package db

import _ "embed"

// Schema holds the DDL for users, products, orders and order_items.
//
//go:embed migrations/001_schema.sql
var Schema string
