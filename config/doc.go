// Package config loads runtime configuration for passkeeper.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional YAML file: the path given with -c/--config, or
//     config.yaml next to the default vault when that file exists.
//  3. Command-line flags, applied by the cli package, which override
//     earlier values.
//
// # YAML schema
//
//	vault_path: /home/alice/.local/share/passkeeper/passwords.enc
//	backup_dir: /mnt/usb/passkeeper
//	log_level: warn
//	clipboard_timeout: 30s
//	verify_on_unlock: false
//	kdf:
//	  time: 3
//	  memory_kib: 262144
//	  threads: 1
package config
