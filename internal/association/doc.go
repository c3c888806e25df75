// Package association defines the level-3 association data model and the
// loader that reads association tables from JSON.
//
// An association groups calibrated exposures into one or more output
// products. Each product lists its members, and every member carries an
// exposure type that classifies it as a science target, a PSF reference,
// or something the pipeline analyzes but never aggregates.
package association
