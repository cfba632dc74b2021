// Package enginetest holds test doubles for driving the adapter without a
// real engine binary. See the fakeuci subpackage.
package enginetest
