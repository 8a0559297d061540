package app

import (
	"os"
	"path/filepath"

	"jsonadaptor/internal/etl"
)

// Jobs derives one import job per input from the configuration. A
// directory input becomes a json_dir job, the http source treats inputs
// as URLs and the mongodb source yields a single job for its collection.
func (a *App) Jobs() []*etl.ImportJob {
	cfg := a.cfg
	if cfg.Source == "mongodb" {
		return []*etl.ImportJob{{
			Name:       cfg.MongoCollection,
			SourceType: "mongodb",
			SourceCfg: etl.SourceConfig{
				"uri":        cfg.MongoURI,
				"password":   cfg.Password,
				"collection": cfg.MongoCollection,
				"filter":     cfg.MongoFilter,
			},
			MappingFile: cfg.Mapping,
		}}
	}

	jobs := make([]*etl.ImportJob, 0, len(cfg.Inputs))
	for _, in := range cfg.Inputs {
		if cfg.Source == "http" {
			jobs = append(jobs, &etl.ImportJob{
				Name:        in,
				SourceType:  "http",
				SourceCfg:   etl.SourceConfig{"url": in, "dataPath": cfg.DataPath},
				MappingFile: cfg.Mapping,
			})
			continue
		}
		job := &etl.ImportJob{
			Name:        filepath.Base(in),
			SourceType:  "json_file",
			SourceCfg:   etl.SourceConfig{"filePath": in, "dataPath": cfg.DataPath},
			MappingFile: cfg.Mapping,
		}
		if fi, err := os.Stat(in); err == nil && fi.IsDir() {
			job.SourceType = "json_dir"
			job.SourceCfg = etl.SourceConfig{"dirPath": in, "dataPath": cfg.DataPath}
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// watchJob is the template for files arriving in the watched directory.
func (a *App) watchJob() *etl.ImportJob {
	return &etl.ImportJob{
		Name:        filepath.Base(a.cfg.Watch),
		SourceType:  "json_file",
		SourceCfg:   etl.SourceConfig{"dataPath": a.cfg.DataPath},
		MappingFile: a.cfg.Mapping,
	}
}
