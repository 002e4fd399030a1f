package catalogue

import "github.com/vango-dev/mcproto/pkg/schema"

var (
	propertyData = schema.Record("Data",
		f("name", str),
		f("value", str),
		f("signature", str),
	)

	objectData = schema.Record("ObjectData",
		f("object_id", i32),
		f("velocity_x", i16),
		f("velocity_y", i16),
		f("velocity_z", i16),
	)

	modifierData = schema.Record("ModifierData",
		f("uuid", schema.UUID128()),
		f("amount", f64),
		f("operation", i8),
	)

	attribute = schema.Record("Property",
		f("key", str),
		f("value", f64),
		f("modifiers", schema.Array(schema.PrefixInt16, modifierData)),
	)

	stat = schema.Record("Stat",
		f("name", str),
		f("value", varint),
	)

	updateSign = []schema.Field{
		f("x", i32),
		f("y", i16),
		f("z", i32),
		f("line0", str),
		f("line1", str),
		f("line2", str),
		f("line3", str),
	}

	abilities = []schema.Field{
		f("flags", i8),
		f("flying_speed", f32),
		f("walking_speed", f32),
	}
)

var playToClient = schema.Union("PlayToClient",
	packet("KeepAlive", f("keep_alive_id", i32)), // 0x00
	packet("JoinGame",
		f("entity_id", i32),
		f("gamemode", u8),
		f("dimension", i8),
		f("difficulty", u8),
		f("max_players", u8),
		f("level_type", str),
	),
	packet("ChatMessage", f("data", chat)),
	packet("TimeUpdate", f("world_age", i64), f("time_of_day", i64)),
	packet("EntityEquipment", f("entity_id", i32), f("slot", i16), f("item", slot)),
	packet("SpawnPos", f("x", i32), f("y", i32), f("z", i32)),
	packet("UpdateHealth", f("health", f32), f("food", i16), f("saturation", f32)),
	packet("Respawn",
		f("dimension", i8),
		f("difficulty", u8),
		f("gamemode", u8),
		f("level_type", str),
	),
	packet("PlayerPositionAndLook", // 0x08
		f("position", vec3d),
		f("yaw", f32),
		f("pitch", f32),
		f("on_ground", boolean),
	),
	packet("HeldItemChange", f("slot", i8)),
	packet("UseBed", f("entity_id", i32), f("x", i32), f("y", i8), f("z", i32)),
	packet("Animation", f("entity_id", varint), f("animation", u8)),
	packet("SpawnPlayer",
		f("entity_id", varint),
		f("player_uuid", schema.UUID()),
		f("player_name", str),
		f("data", schema.Array(schema.PrefixVarInt, propertyData)),
		f("position", vec3i),
		f("yaw", u8),
		f("pitch", u8),
		f("current_item", i16),
		f("metadata", metadata),
	),
	packet("CollectItem", f("collected_eid", i32), f("collector_eid", i32)),
	packet("SpawnObject",
		f("entity_id", varint),
		f("type", i8),
		f("position", vec3i),
		f("pitch", i8),
		f("yaw", i8),
		f("data", objectData),
	),
	packet("SpawnMob",
		f("entity_id", varint),
		f("type", u8),
		f("position", vec3i),
		f("yaw", i8),
		f("pitch", i8),
		f("head_pitch", i8),
		f("velocity", vec3s),
		f("metadata", metadata),
	),
	packet("SpawnPainting", // 0x10
		f("entity_id", varint),
		f("title", str),
		f("x", i32),
		f("y", i32),
		f("z", i32),
		f("direction", i32),
	),
	packet("SpawnExperienceOrb", f("entity_id", varint), f("position", vec3i), f("count", i16)),
	packet("EntityVelocity", f("entity_id", i32), f("velocity", vec3s)),
	packet("DestroyEntities", f("entity_ids", schema.Array(schema.PrefixInt8, i32))),
	packet("EntityIdle", f("entity_id", i32)),
	packet("EntityRelativeMove", f("entity_id", i32), f("delta", vec3b)),
	packet("EntityLook", f("entity_id", i32), f("yaw", i8), f("pitch", i8)),
	packet("EntityLookAndRelativeMove",
		f("entity_id", i32),
		f("delta", vec3b),
		f("yaw", i8),
		f("pitch", i8),
	),
	packet("EntityTeleport", // 0x18
		f("entity_id", i32),
		f("position", vec3i),
		f("yaw", i8),
		f("pitch", i8),
	),
	packet("EntityHeadLook", f("entity_id", i32), f("head_yaw", i8)),
	packet("EntityStatus", f("entity_id", i32), f("entity_status", i8)),
	packet("AttachEntity", f("riding_eid", i32), f("vehicle_eid", i32), f("leash", boolean)),
	packet("EntityMetadata", f("entity_id", i32), f("metadata", metadata)),
	packet("EntityEffect",
		f("entity_id", i32),
		f("effect_id", i8),
		f("amplifier", i8),
		f("duration", i16),
	),
	packet("RemoveEntityEffect", f("entity_id", i32), f("effect_id", i8)),
	packet("SetExperience", f("xp_bar", f32), f("level", i16), f("xp_total", i16)),
	packet("EntityProperties", // 0x20
		f("entity_id", i32),
		f("properties", schema.Array(schema.PrefixInt32, attribute)),
	),
	packet("ChunkData",
		f("x", i32),
		f("z", i32),
		f("ground_up", boolean),
		f("bit_map", u16),
		f("add_bit_map", u16),
		f("chunk_data", bytes32),
	),
	packet("MultiBlockChange",
		f("chunk_x", i32),
		f("chunk_z", i32),
		f("records", i16),
		f("data", bytes32),
	),
	packet("BlockChange",
		f("x", i32),
		f("y", i8),
		f("z", i32),
		f("block_type", varint),
		f("metadata", u8),
	),
	packet("BlockAction",
		f("x", i32),
		f("y", i16),
		f("z", i32),
		f("byte1", u8),
		f("byte2", u8),
		f("block_id", varint),
	),
	packet("BlockBreakAnimation",
		f("entity_id", varint),
		f("x", i32),
		f("y", i32),
		f("z", i32),
		f("destroy_stage", i8),
	),
	schema.V("ChunkDataBulk", schema.ChunkBulk()),
	packet("Explosion",
		f("position", vec3f),
		f("radius", f32),
		f("records", schema.Array(schema.PrefixInt32, vec3b)),
		f("player_motion", vec3f),
	),
	packet("Effect", // 0x28
		f("effect_id", i32),
		f("x", i32),
		f("y", i8),
		f("z", i32),
		f("data", i32),
		f("global", boolean),
	),
	packet("SoundEffect",
		f("name", str),
		f("position", vec3i),
		f("volume", f32),
		f("pitch", u8),
	),
	packet("Particle",
		f("particle_name", str),
		f("position", vec3f),
		f("offset", vec3f),
		f("particle_data", f32),
		f("particle_count", i32),
	),
	packet("ChangeGameState", f("reason", u8), f("value", f32)),
	packet("SpawnGlobalEntity", f("entity_id", varint), f("type", i8), f("position", vec3i)),
	packet("OpenWindow",
		f("window_id", u8),
		f("inventory_type", u8),
		f("window_title", str),
		f("slots", u8),
		f("use_provided_title", boolean),
		// Only sent for horse inventories.
		f("entity_id", schema.Optional(i32)),
	),
	packet("CloseWindow", f("window_id", u8)),
	packet("SetSlot", f("window_id", i8), f("slot", i16), f("item", slot)),
	packet("WindowItems", // 0x30
		f("window_id", u8),
		f("slots", schema.Array(schema.PrefixInt16, slot)),
	),
	packet("WindowProperty", f("window_id", i8), f("property", i16), f("value", i16)),
	packet("ConfirmTransaction", f("window_id", u8), f("action_number", i16), f("accepted", boolean)),
	packet("UpdateSign", updateSign...),
	packet("UpdateMap", f("item_damage", varint), f("data", schema.Rest())),
	packet("UpdateBlockEntity",
		f("x", i32),
		f("y", i16),
		f("z", i32),
		f("action", u8),
		f("nbt_data", schema.GzipDocument()),
	),
	packet("SignEditorOpen", f("x", i32), f("y", i32), f("z", i32)),
	packet("Statistics", f("stats", schema.Array(schema.PrefixVarInt, stat))),
	packet("UpdatePlayerList", // 0x38
		f("player_name", str),
		f("online", boolean),
		f("ping", i16),
	),
	packet("PlayerAbilities", abilities...),
	packet("TabComplete", f("matches", schema.Array(schema.PrefixVarInt, str))),
	packet("ScoreboardObjective", f("name", str), f("display_text", str), f("action", i8)),
	packet("UpdateScore",
		f("item_name", str),
		f("action", i8),
		f("score_name", str),
		f("value", i32),
	),
	packet("DisplayScoreboard", f("position", i8), f("name", str)),
	// TODO: decode the team action union instead of carrying it raw.
	packet("UpdateTeam", f("team_name", str), f("action", schema.Rest())),
	packet("PluginMessage", f("channel", str), f("data", bytes16)),
	packet("Disconnect", f("reason", chat)), // 0x40
)

var playToServer = schema.Union("PlayToServer",
	packet("KeepAlive", f("keep_alive_id", i32)), // 0x00
	packet("ChatMessage", f("message", str)),
	packet("UseEntity",
		f("target_eid", i32),
		f("mouse", i8),
		// Present when mouse is 2.
		f("position", schema.Optional(vec3f)),
	),
	packet("PlayerIdle", f("on_ground", boolean)),
	packet("PlayerPosition",
		f("x", f64),
		f("stance", f64),
		f("y", f64),
		f("z", f64),
		f("on_ground", boolean),
	),
	packet("PlayerLook", f("yaw", f32), f("pitch", f32), f("on_ground", boolean)),
	packet("PlayerPositionAndLook",
		f("x", f64),
		f("stance", f64),
		f("y", f64),
		f("z", f64),
		f("yaw", f32),
		f("pitch", f32),
		f("on_ground", boolean),
	),
	packet("PlayerDigging",
		f("status", i8),
		f("x", i32),
		f("y", i8),
		f("z", i32),
		f("face", i8),
	),
	packet("PlayerBlockPlacement", // 0x08
		f("x", i32),
		f("y", i8),
		f("z", i32),
		f("direction", i8),
		f("held_item", slot),
		f("cursor", vec3b),
	),
	packet("HeldItemChange", f("slot", i16)),
	packet("Animation", f("entity_id", i32), f("animation", i8)),
	packet("EntityAction", f("entity_id", i32), f("action_id", i8), f("jump_boost", i32)),
	packet("SteerVehicle",
		f("sideways", f32),
		f("forward", f32),
		f("jump", boolean),
		f("unmount", boolean),
	),
	packet("CloseWindow", f("window_id", u8)),
	packet("ClickWindow",
		f("window_id", u8),
		f("slot", i16),
		f("button", i8),
		f("action_number", i16),
		f("mode", i8),
		f("clicked_item", slot),
	),
	packet("ConfirmTransaction", f("window_id", i8), f("action_number", i16), f("accepted", boolean)),
	packet("CreativeInventoryAction", f("slot", i16), f("clicked_item", slot)), // 0x10
	packet("EnchantItem", f("window_id", u8), f("enchantment", i8)),
	packet("UpdateSign", updateSign...),
	packet("PlayerAbilities", abilities...),
	packet("TabComplete", f("text", str)),
	packet("ClientSettings",
		f("locale", str),
		f("view_distance", i8),
		f("chat_mode", i8),
		f("chat_colors", boolean),
		f("difficulty", u8),
		f("show_cape", boolean),
	),
	packet("ClientStatus", f("action_id", i8)),
	packet("CustomPayload", f("channel", str), f("data", schema.Rest())),
)
