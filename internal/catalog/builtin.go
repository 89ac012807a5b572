package catalog

type option func(*Descriptor)

func unit(u string) option { return func(d *Descriptor) { d.Unit = u } }
func class(c string) option { return func(d *Descriptor) { d.DeviceClass = c } }
func state(s string) option { return func(d *Descriptor) { d.StateClass = s } }
func at(path string) option { return func(d *Descriptor) { d.Path = path } }
func value(fn ValueFunc) option { return func(d *Descriptor) { d.Value = fn } }

func measured(u string) option {
	return func(d *Descriptor) { d.Unit, d.StateClass = u, StateMeasurement }
}

func durationSecs() option {
	return func(d *Descriptor) { d.Unit, d.DeviceClass = UnitSeconds, ClassDuration }
}

func rate(u, devClass string) option {
	return func(d *Descriptor) { d.Unit, d.DeviceClass, d.StateClass = u, devClass, StateMeasurement }
}

func desc(cat Category, key, path string, opts ...option) Descriptor {
	d := Descriptor{Key: key, Category: cat, Path: path}
	for _, o := range opts {
		o(&d)
	}
	return d
}

// under builds a descriptor whose path is prefix + "." + key unless
// overridden with at().
func under(prefix string, cat Category, key string, opts ...option) Descriptor {
	return desc(cat, key, prefix+"."+key, opts...)
}

func health(cat Category, key string, opts ...option) Descriptor {
	return under("health", cat, key, opts...)
}

func settings(cat Category, key string, opts ...option) Descriptor {
	return under("settings", cat, key, opts...)
}

func features(cat Category, key string, opts ...option) Descriptor {
	return under("features", cat, key, opts...)
}

// Computer vision detection types. Each one yields an enabled, mode and
// notification observation, in that order.
var cvDetectionTypes = []string{
	"human",
	"motion",
	"other_motion",
	"loitering",
	"moving_vehicle",
	"vehicle",
	"animal",
	"package_delivery",
	"package_pickup",
	"unverified_motion",
	"motion_stop",
}

var cvPaidFeatures = []string{
	"human",
	"motion",
	"other_motion",
	"loitering",
	"vehicle",
	"animal",
	"package_delivery",
	"package_pickup",
	"baby_cry",
	"car_alarm",
	"co2_smoke_alarm",
	"dog_bark",
	"glass_break",
	"general_sound",
}

var otherPaidFeatures = []string{
	"alexa_concierge",
	"sheila_cv",
	"sheila_recording",
	"extended_live_view",
	"recording_24x7",
	"natural_language_search",
	"multicam_live_view",
	"daily_digest",
	"package_protection",
	"critical_alerts",
}

func builtin() []Descriptor {
	var out []Descriptor
	add := func(ds ...Descriptor) { out = append(out, ds...) }

	add(
		health(CategoryHealth, "rssi", rate(UnitDBm, ClassSignalStrength)),
		health(CategoryHealth, "rssi_category"),
		health(CategoryHealth, "connected"),
		health(CategoryHealth, "packet_loss", measured(UnitPercent)),
		health(CategoryHealth, "packet_loss_category"),
		health(CategoryHealth, "bandwidth", measured(UnitKbps)),
		health(CategoryHealth, "current_bandwidth_mb", rate(UnitMbps, ClassDataRate)),
		health(CategoryHealth, "egress_tx_rate", rate(UnitMbps, ClassDataRate), value(TruthyFloat("health.egress_tx_rate"))),
		health(CategoryHealth, "egress_tx_rate_category"),
		health(CategoryHealth, "wifi_channel", at("health.channel")),
		health(CategoryHealth, "network_connection_value"),
		health(CategoryHealth, "sidewalk_connection"),
		health(CategoryHealth, "uptime_sec", durationSecs(), state(StateTotalIncreasing)),
		health(CategoryHealth, "uptime_formatted", at("health.uptime_sec"), value(FormatUptime("health.uptime_sec"))),
		health(CategoryHealth, "last_update_time", class(ClassTimestamp), value(UnixTime("health.last_update_time"))),
		health(CategoryHealth, "wifi_is_ring_network"),
	)

	add(
		health(CategoryPower, "battery_percentage", rate(UnitPercent, ClassBattery)),
		health(CategoryPower, "battery_percentage_category"),
		health(CategoryPower, "battery_voltage", rate(UnitMillivolt, ClassVoltage)),
		health(CategoryPower, "battery_voltage_category"),
		health(CategoryPower, "battery_present"),
		health(CategoryPower, "battery_save"),
		health(CategoryPower, "battery_error"),
		health(CategoryPower, "ac_power", value(IntBool("health.ac_power"))),
		health(CategoryPower, "transformer_voltage", rate(UnitVolt, ClassVoltage)),
		health(CategoryPower, "transformer_voltage_category"),
		health(CategoryPower, "ext_power_state"),
		health(CategoryPower, "run_mode"),
		health(CategoryPower, "pref_run_mode"),
	)

	add(
		health(CategoryFirmware, "firmware_version"),
		health(CategoryFirmware, "firmware_version_status"),
		health(CategoryFirmware, "ota_status"),
		health(CategoryFirmware, "firmware_avg_bitrate", measured(UnitKbps), value(TruthyInt("health.firmware_avg_bitrate"))),
	)

	add(
		health(CategoryVideo, "vod_enabled"),
		settings(CategoryVideo, "vod_status"),
		settings(CategoryVideo, "vod_suspended"),
		health(CategoryVideo, "stream_resolution"),
		settings(CategoryVideo, "live_view_preset_profile"),
		settings(CategoryVideo, "live_view_disabled"),
		settings(CategoryVideo, "extended_live_view"),
		settings(CategoryVideo, "exposure_control"),
		settings(CategoryVideo, "preroll_enabled"),
		settings(CategoryVideo, "max_resolution_mode"),
		settings(CategoryVideo, "encryption_enabled", at("settings.video_settings.encryption_enabled")),
		settings(CategoryVideo, "hevc_enabled", at("settings.video_settings.hevc_enabled")),
		features(CategoryVideo, "max_digital_zoom_level", at("features.video_rendering.max_digital_zoom_level")),
	)

	add(
		settings(CategoryAudio, "enable_audio_recording"),
		settings(CategoryAudio, "doorbell_volume"),
		settings(CategoryAudio, "voice_volume"),
		settings(CategoryAudio, "chime_enable", at("settings.chime_settings.enable")),
		settings(CategoryAudio, "chime_duration", at("settings.chime_settings.duration"), durationSecs()),
	)

	add(
		settings(CategoryMotion, "motion_detection_enabled"),
		settings(CategoryMotion, "advanced_motion_detection_enabled"),
		settings(CategoryMotion, "advanced_motion_detection_human_only_mode"),
		settings(CategoryMotion, "people_detection_eligible"),
		settings(CategoryMotion, "motion_snooze_preset_profile"),
		settings(CategoryMotion, "loitering_threshold", durationSecs()),
		settings(CategoryMotion, "advanced_motion_zones_enabled"),
		settings(CategoryMotion, "pir_sensitivity_1"),
	)

	for _, t := range cvDetectionTypes {
		base := "settings.cv_settings.detection_types." + t
		add(
			desc(CategoryCVDetection, "cv_"+t+"_enabled", base+".enabled"),
			desc(CategoryCVDetection, "cv_"+t+"_mode", base+".mode"),
			desc(CategoryCVDetection, "cv_"+t+"_notification", base+".notification"),
		)
	}
	add(
		desc(CategoryCVDetection, "cv_threshold_loitering", "settings.cv_settings.threshold.loitering", unit(UnitSeconds)),
		desc(CategoryCVDetection, "cv_threshold_package_delivery", "settings.cv_settings.threshold.package_delivery", unit(UnitSeconds)),
		desc(CategoryCVDetection, "natural_language_search_enabled", "settings.cv_settings.search_types.natural_language_search.enabled"),
	)

	for _, f := range cvPaidFeatures {
		add(desc(CategoryCVPaid, "paid_"+f, "settings.cv_paid_features."+f))
	}
	for _, f := range otherPaidFeatures {
		add(desc(CategoryOtherPaid, "paid_"+f, "settings.other_paid_features."+f))
	}

	add(
		settings(CategoryNotifications, "enable_rich_notifications"),
		settings(CategoryNotifications, "rich_notifications_billing_eligible"),
		settings(CategoryNotifications, "rich_notifications_face_crop_enabled"),
		settings(CategoryNotifications, "rich_notifications_scene_source"),
		features(CategoryNotifications, "rich_notifications_eligible"),
	)

	add(
		settings(CategoryRecording, "user_specified_recording_ttl", unit(UnitDays)),
		settings(CategoryRecording, "lite_24x7_subscribed", at("settings.lite_24x7.subscribed")),
		settings(CategoryRecording, "lite_24x7_enabled", at("settings.lite_24x7.enabled")),
		settings(CategoryRecording, "lite_24x7_frequency_secs", at("settings.lite_24x7.frequency_secs"), unit(UnitSeconds)),
		settings(CategoryRecording, "lite_24x7_resolution_p", at("settings.lite_24x7.resolution_p"), unit(UnitP)),
		settings(CategoryRecording, "lite_24x7_footage_ttl", unit(UnitHours)),
		settings(CategoryRecording, "offline_motion_enabled", at("settings.offline_motion_event_settings.enabled")),
	)

	add(
		health(CategoryFloodlight, "floodlight_on"),
		health(CategoryFloodlight, "white_led_on"),
		settings(CategoryFloodlight, "floodlight_duration", at("settings.floodlight_settings.duration"), durationSecs()),
		settings(CategoryFloodlight, "floodlight_brightness", at("settings.floodlight_settings.brightness")),
		settings(CategoryFloodlight, "floodlight_always_on", at("settings.floodlight_settings.always_on")),
	)

	for _, key := range []string{"birds_eye_view_enabled", "bez_feature_enabled", "bez_filtering_enabled"} {
		add(desc(CategoryRadar, key, "settings.radar_settings."+key))
	}
	add(desc(CategoryRadar, "installation_height", "settings.radar_settings.installation_height", unit(UnitMeter)))

	add(
		settings(CategoryLocalProcessing, "sheila_cv_processing_enabled", at("settings.sheila_settings.cv_processing_enabled")),
		settings(CategoryLocalProcessing, "sheila_local_storage_enabled", at("settings.sheila_settings.local_storage_enabled")),
		features(CategoryLocalProcessing, "sheila_camera_eligible"),
		features(CategoryLocalProcessing, "sheila_camera_processing_eligible"),
	)

	add(
		features(CategoryFeatures, "cfes_eligible"),
		features(CategoryFeatures, "motions_enabled"),
		features(CategoryFeatures, "show_recordings"),
		features(CategoryFeatures, "show_vod_settings"),
		features(CategoryFeatures, "recording_mode", at("features.video_recording.recording_mode")),
		features(CategoryFeatures, "recording_enabled", at("features.video_recording.recording_enabled")),
		features(CategoryFeatures, "recording_state", at("features.video_recording.recording_state")),
		features(CategoryFeatures, "recording_24x7_eligible"),
		features(CategoryFeatures, "dynamic_network_switching_eligible"),
	)

	add(
		health(CategoryDeviceStatus, "night_mode_on"),
		health(CategoryDeviceStatus, "siren_on"),
		health(CategoryDeviceStatus, "hatch_open"),
		desc(CategoryDeviceStatus, "stolen", "stolen"),
		desc(CategoryDeviceStatus, "owned", "owned"),
		desc(CategoryDeviceStatus, "subscribed", "subscribed"),
		desc(CategoryDeviceStatus, "is_sidewalk_gateway", "is_sidewalk_gateway"),
		desc(CategoryDeviceStatus, "device_kind", "kind"),
	)

	return out
}
