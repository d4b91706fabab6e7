// Package domain contains the core entities of the Hermes backend:
// users, the durable task records that audit every mediated unit of
// work, and the enumerations shared by both.
//
// Domain types are plain data with validation; persistence lives in
// the store and postgres packages.
package domain
