package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

type Config struct {
    Port           string
    RateTablesDir  string
    ProcessDelay   time.Duration
    AllowedOrigins []string
    LogLevel       string
}

func Load() Config {
    port := os.Getenv("PORT")
    if port == "" {
        port = "8080"
    }
    delay := 1500 * time.Millisecond
    if v := os.Getenv("PROCESS_DELAY_MS"); v != "" {
        if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
            delay = time.Duration(ms) * time.Millisecond
        }
    }
    origins := []string{"*"}
    if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
        origins = origins[:0]
        for _, o := range strings.Split(v, ",") {
            if o = strings.TrimSpace(o); o != "" {
                origins = append(origins, o)
            }
        }
    }
    return Config{
        Port:           port,
        RateTablesDir:  os.Getenv("RATE_TABLES_DIR"),
        ProcessDelay:   delay,
        AllowedOrigins: origins,
        LogLevel:       os.Getenv("LOG_LEVEL"),
    }
}
