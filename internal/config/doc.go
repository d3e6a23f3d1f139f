// Package config provides configuration parsing for zvue.
//
// The configuration is stored in zvue.json. Any field can be overridden by
// a ZVUE_* environment variable.
//
// # Configuration File Structure
//
//	{
//	  "template": "index.html",
//	  "data": "s3://bucket/data.yaml",
//	  "addr": "localhost:3000",
//	  "strict": true,
//	  "isolate": false,
//	  "logLevel": "debug",
//	  "metrics": {"enabled": true, "namespace": "zvue"},
//	  "s3": {"region": "eu-west-1", "endpoint": "http://localhost:9000", "pathStyle": true}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Template:", cfg.TemplatePath())
package config
