// Package datamodel holds the in-memory science data model for AMI
// results, the on-disk JSON product store, and the provenance metadata
// blender used when multiple inputs contribute to one output product.
package datamodel
