// Package domain models French bike-sharing availability data and the
// municipal reference data used to join it.
//
// # Data Sources
//
// Three open-data feeds are ingested once per ETL run:
//
//   - French communes reference (geo.api.gouv.fr/communes): one record per
//     municipality with its INSEE administrative code, label, and population.
//     Population is absent for some communes and stays null (no fallback).
//   - Vélib' Métropole real-time availability (opendata.paris.fr): one flat
//     record per station mixing identity (stationcode, name, commune) and
//     availability (docks, bikes). A single raw record therefore yields both a
//     Station and a StationStatement row.
//   - Nantes Métropole bike availability (data.nantesmetropole.fr, JCDecaux
//     format): records live under a "results" envelope. The feed serves a
//     single municipality, so city identity is constant (Nantes / INSEE
//     44109).
//
// # Provider Conventions
//
// Station identifiers:
//
//	Paris "stationcode" arrives as a JSON string or number depending on the
//	export; Nantes "number" is always a number. Both are coerced to string
//	ids, and provider-local codes do not collide across providers in
//	practice — an assumed invariant, not enforced.
//
// Renting status:
//
//	Paris exposes a localized flag: is_renting == "OUI" means the station is
//	renting; any other value, including null, maps to CLOSED. Nantes does not
//	expose a renting flag and all its stations are recorded OPEN.
//
// Statement timestamps:
//
//	Nantes supplies a per-record "last_update" (RFC 3339). Paris conflates
//	identity and availability in one payload without a trusted per-record
//	update time, so its statements are stamped with the run date.
//
// # Snapshot Versioning
//
// Every parsed row carries the run's snapshot date. Consolidated tables keep
// one row per natural key per snapshot date, forming a daily-versioned
// history; re-running the same day replaces that day's rows only.
package domain
