// Package config provides configuration parsing for mcproto.
//
// The configuration is stored in mcproto.toml. Every key is optional and
// falls back to the value from Default.
//
// # Configuration File Structure
//
//	[log]
//	level = "debug"
//	pretty = true
//
//	[limits]
//	max_depth = 64
//	max_frame_size = 2097151
//
//	[proxy]
//	listen = "0.0.0.0:25566"
//	upstream = "play.example.net:25565"
//	dial_timeout = "5s"
//	decode = true
//
//	[http]
//	listen = "127.0.0.1:9100"
//	websocket = true
//
//	[compression]
//	threshold = 256
//
//	[capture]
//	dir = "captures"
//
//	[capture.s3]
//	bucket = "mc-captures"
//	prefix = "proxy"
//	region = "eu-west-1"
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Upstream:", cfg.Proxy.Upstream)
package config
