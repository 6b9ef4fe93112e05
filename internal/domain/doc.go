// Package domain contains the core business entities, value objects, and
// domain logic of the application. A Memory embeds a block document (see
// the block subpackage) together with the metadata shown around it.
package domain
