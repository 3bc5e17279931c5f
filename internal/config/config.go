package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "JIVETIME_"

type Application struct {
	Host       string     `koanf:"host"`
	Listen     string     `koanf:"listen"`
	Google     Google     `koanf:"google"`
	Database   Database   `koanf:"db"`
	Calendar   Calendar   `koanf:"calendar"`
	Timeslot   Timeslot   `koanf:"timeslot"`
	Recurrence Recurrence `koanf:"recurrence"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
	// SyncSchedule is a cron expression; empty disables the background export.
	SyncSchedule string `koanf:"syncschedule"`
	SyncDays     int    `koanf:"syncdays"`
}

type Database struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Pass     string `koanf:"pass"`
	Name     string `koanf:"name"`
	Schema   string `koanf:"schema"`
	MaxConns int32  `koanf:"maxconns"`
}

type Calendar struct {
	// FirstWeekday uses time.Weekday numbering, 0 = Sunday.
	FirstWeekday int    `koanf:"firstweekday"`
	Timezone     string `koanf:"timezone"`
}

type Timeslot struct {
	Start           string        `koanf:"start"`
	Window          time.Duration `koanf:"window"`
	Interval        time.Duration `koanf:"interval"`
	MinColumns      int           `koanf:"mincolumns"`
	Format          string        `koanf:"format"`
	DefaultDuration time.Duration `koanf:"defaultduration"`
}

type Recurrence struct {
	MaxOccurrences int `koanf:"maxoccurrences"`
}

func defaults() Application {
	return Application{
		Host:   "http://localhost:8181",
		Listen: ":8181",
		Google: Google{
			SyncDays: 14,
		},
		Database: Database{
			Host:     "localhost",
			Port:     5432,
			User:     "jivetime",
			Pass:     "",
			Name:     "jivetime",
			Schema:   "jivetime",
			MaxConns: 25,
		},
		Calendar: Calendar{
			FirstWeekday: int(time.Sunday),
			Timezone:     "UTC",
		},
		Timeslot: Timeslot{
			Start:           "09:00",
			Window:          10 * time.Hour,
			Interval:        15 * time.Minute,
			MinColumns:      4,
			Format:          "15:04",
			DefaultDuration: time.Hour,
		},
		Recurrence: Recurrence{
			MaxOccurrences: 5000,
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
