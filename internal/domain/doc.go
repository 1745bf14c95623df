// Package domain fuses multi-model weather forecasts into a single advisory.
//
// # Data Source
//
// Bundles follow the Open-Meteo multi-model response shape. A request for
// several models returns one flat namespace per resolution in which every
// per-model field carries a model suffix:
//
//	"temperature_2m_best_match", "temperature_2m_gfs_seamless", ...
//
// Fields without a suffix ("time", "interval") are shared by all models. All
// arrays of one resolution have the length of that resolution's "time" array.
//
// # Pipeline
//
//	RawModelBundle
//	  -> NormalizeBundle   primary fields under canonical names + per-model comparison records
//	  -> DecodeSnapshot    typed, nullable current / hourly / daily / 15-minute records
//	  -> Corrector         effective WMO weather code from the provider code and raw signals
//	  -> ScoreReliability  low / medium / high confidence from cross-model spread
//	  -> GenerateAdvisory  localized text, tips and alerts
//
// Every stage after normalization is a pure function of the snapshot, a
// timestamp and the display preferences.
//
// # Weather Codes
//
// Codes are WMO 4677 interpretation codes as used by Open-Meteo:
//
//	0-3   clear to overcast       45, 48  fog
//	51-57 drizzle                 61-67   rain (66, 67 freezing)
//	71-77 snow                    80-82   rain showers
//	85-86 snow showers            95-99   thunderstorm
//
// # Code Correction
//
// Provider codes are batch products that lag local conditions. The corrector
// applies an ordered list of named rules, each seeing the previous result:
//
//	cloud_reclassification  effective cloud cover (1.0 low + 0.6 mid + 0.3 high) for codes 0-3
//	nowcast_override        local high-resolution nowcast above 0.1 mm forces light rain
//	dew_point_fog           spread < 1.2°C, RH > 96 %, cover > 50 % forces fog
//	convective_override     CAPE > 1200 with cover > 60 % escalates rain to storm
//	snow_line               rain becomes snow when the freezing level reaches the site
//	visibility_fog          visibility < 1000 m without precipitation forces fog
//	intensity_leveling      nowcast volume decides light / moderate / heavy rain
//
// Unknown inputs are coerced with SafeNumber before any comparison so NaN
// never reaches a threshold check.
package domain
