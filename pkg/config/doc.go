// A YAML configuration file overrides only the fields it names; everything
// else keeps the value from Default:
//
//	name: nightly-sim
//	geometry_file: ${GEOMETRY_DIR}/default-dom-geometry.xml
//	pools:
//	  simpleHit:
//	    max_live: 4096
//	    prealloc: 512
//	  triggerRequest:
//	    max_idle: 64
//	logging:
//	  level: debug
//	  encoding: console
//	pipeline:
//	  producers: 8
//	  events: 20000
//	  hits_per_trigger: 16
//	  beacon_every: 100
//	  timeout: 30s
//
// Environment variables written as ${NAME} are substituted before parsing.
package config
