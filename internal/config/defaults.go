package config

import "github.com/spf13/viper"

// DefaultTeams are the franchises offered for selection when none are configured
var DefaultTeams = []string{
	"Sunrisers Hyderabad", "Mumbai Indians", "Royal Challengers Bangalore",
	"Kolkata Knight Riders", "Kings XI Punjab", "Chennai Super Kings",
	"Rajasthan Royals", "Delhi Capitals",
}

// DefaultCities are the host cities offered for selection when none are configured
var DefaultCities = []string{
	"Hyderabad", "Bangalore", "Mumbai", "Indore", "Kolkata", "Delhi",
	"Chandigarh", "Jaipur", "Chennai", "Cape Town", "Port Elizabeth",
	"Durban", "Centurion", "East London", "Johannesburg", "Kimberley",
	"Bloemfontein", "Ahmedabad", "Cuttack", "Nagpur", "Dharamsala",
	"Visakhapatnam", "Pune", "Raipur", "Ranchi", "Abu Dhabi",
	"Sharjah", "Mohali", "Bengaluru",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "chase-predictor")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout_seconds", 10)
	v.SetDefault("server.write_timeout_seconds", 10)
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	v.SetDefault("training.matches_path", "data/matches.csv")
	v.SetDefault("training.deliveries_path", "data/deliveries.csv")
	v.SetDefault("training.test_fraction", 0.2)
	v.SetDefault("training.seed", 42)
	v.SetDefault("training.c", 1.0)
	v.SetDefault("training.max_iter", 100)
	v.SetDefault("training.tol", 1e-5)
	v.SetDefault("training.schedule", "")
	v.SetDefault("training.http_timeout_seconds", 60)
	v.SetDefault("training.http_max_retries", 3)
	v.SetDefault("training.job_timeout_minutes", 240)

	v.SetDefault("model.name", "chase-win-probability")
	v.SetDefault("model.artifact_path", "models/pipe.json")
	v.SetDefault("model.use_registry", false)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("cache.max_size", 10000)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 50)
	v.SetDefault("rate_limit.burst", 100)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "chase")
	v.SetDefault("database.user", "chase")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 5)
	v.SetDefault("database.min_connections", 1)

	v.SetDefault("secrets.enabled", false)
	v.SetDefault("secrets.region", "")
	v.SetDefault("secrets.secret_name", "")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("teams", DefaultTeams)
	v.SetDefault("cities", DefaultCities)
}
