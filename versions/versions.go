// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package versions checks binary versions against version constraints.
package versions

import (
	"github.com/apparentlymart/go-versions/versions"
	"github.com/apparentlymart/go-versions/versions/constraints"
	hclversion "github.com/hashicorp/go-version"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
)

// ErrCheck indicates a failed version check.
const ErrCheck errors.Kind = "version check error"

// Check checks if the version of the named binary matches the provided
// constraint and fails otherwise.
// For just checking if they match, use the [Match] function.
func Check(name, version, constraint string, allowPrereleases bool) error {
	match, err := Match(version, constraint, allowPrereleases)
	if err != nil {
		return err
	}

	if !match {
		return errors.E(
			ErrCheck,
			"version constraint %q not satisfied by %s version %q",
			constraint,
			name,
			version,
		)
	}
	return nil
}

// Match checks if version matches the given constraint.
// It only returns an error in the case of invalid version or constraint string.
//
// Without allowPrereleases, a prerelease version never matches a constraint
// that does not mention a prerelease itself.
func Match(version, constraint string, allowPrereleases bool) (bool, error) {
	if allowPrereleases {
		semver, err := versions.ParseVersion(version)
		if err != nil {
			return false, errors.E(ErrCheck, err, "invalid version %q", version)
		}

		spec, err := constraints.ParseRubyStyleMulti(constraint)
		if err != nil {
			return false, errors.E(ErrCheck, err, "invalid constraint %q", constraint)
		}

		return versions.MeetingConstraintsExact(spec).Has(semver), nil
	}

	spec, err := hclversion.NewConstraint(constraint)
	if err != nil {
		return false, errors.E(ErrCheck, err, "invalid constraint %q", constraint)
	}

	semver, err := hclversion.NewSemver(version)
	if err != nil {
		return false, errors.E(ErrCheck, err, "invalid version %q", version)
	}

	return spec.Check(semver), nil
}
