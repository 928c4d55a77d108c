// Package domain classifies daily weather forecasts into risk alerts.
//
// # Data Source
//
// Forecasts originate from the upstream ML model, which writes one JSON
// array per forecast run. Each element is a single day:
//
//	{"date": "2026-07-10", "tmax": 42.1, "rhum": 18, "wspd": 5}
//
//	tmax: daily maximum temperature in °C
//	rhum: relative humidity in percent
//	wspd: wind speed in km/h
//
// Extra keys produced by the model (tavg, tmin, prcp, pres) are ignored.
// Days must already be in chronological order; the engine never sorts and
// never inspects the spacing between dates.
//
// # Daily Rules
//
// Each day is checked in isolation. The first matching rule wins:
//
//	1. tmax >= 42                 HEATWAVE_CRITICAL     CRITICAL
//	2. tmax >= 38 and rhum < 20   DRY_HEAT_RISK         HIGH
//	3. wspd >= 85                 SEVERE_STORM_EVENT    CRITICAL
//	4. wspd >= 65                 STRONG_WIND_ADVISORY  HIGH
//
// Heat rules are evaluated before wind rules, so rule order is not severity
// order: a dry-heat day with storm-force wind reports DRY_HEAT_RISK.
//
// # Persistence Rules
//
// A trailing window of the last three days is checked after each day is
// pushed. The window must be full:
//
//	1. tmax > 40 on all three days   PERSISTENT_HEATWAVE   EXTREME
//	2. wspd > 50 on all three days   LONG_DURATION_STORM   HIGH
//
// # Resolution
//
// When a persistence rule fires it replaces the daily alert for that day,
// even when the daily alert has a higher level (a HIGH long-duration storm
// replaces a CRITICAL severe storm). See [Annotate].
//
// # Severity Levels
//
// [AlertLevel] is a closed set ranked LOW < MODERATE < HIGH < EXTREME <
// CRITICAL. The current rule set only emits HIGH, EXTREME and CRITICAL; the
// lower levels exist for downstream consumers that share the enum.
package domain
