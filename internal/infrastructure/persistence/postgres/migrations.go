// Package postgres implements the PostgreSQL persistence layer of the bot.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE LINKED ACCOUNTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create linked_accounts table
-- Version: 001

-- One row per Telegram user with a bound game account.
CREATE TABLE IF NOT EXISTS linked_accounts (
    telegram_id BIGINT PRIMARY KEY,
    steam32 BIGINT NOT NULL,
    persona_name VARCHAR(100) NOT NULL DEFAULT '',

    -- Simulated rating: value plus provenance (manual | estimated | unset).
    rating INTEGER,
    rating_source VARCHAR(10) NOT NULL DEFAULT 'unset',
    max_rating INTEGER,

    -- Last known medal, encoded as major*10+minor.
    rank_tier INTEGER NOT NULL DEFAULT 0,

    -- Poll watermarks: last seen match ids, 0 when nothing seen yet.
    last_match_id BIGINT NOT NULL DEFAULT 0,
    last_ranked_match_id BIGINT NOT NULL DEFAULT 0,

    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- Notification preferences (JSONB for flexibility)
    preferences JSONB NOT NULL DEFAULT '{
        "match_card": true,
        "streak_alert": true,
        "rank_alert": true,
        "daily_report": true
    }'::jsonb,

    CONSTRAINT valid_steam32 CHECK (steam32 > 0),
    CONSTRAINT valid_rating_source CHECK (rating_source IN ('manual', 'estimated', 'unset')),
    CONSTRAINT valid_rating_range CHECK (rating IS NULL OR (rating >= 0 AND rating <= 20000)),
    CONSTRAINT valid_rank_tier CHECK (rank_tier >= 0 AND rank_tier <= 85)
);

CREATE INDEX IF NOT EXISTS idx_linked_accounts_steam32 ON linked_accounts(steam32);
`

const migration001Down = `
DROP TABLE IF EXISTS linked_accounts;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE MATCHES
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create matches table
-- Version: 002

-- Per-player match history filled by the poll cycle and bind backfill.
-- The (steam32, match_id) key makes the upsert idempotent: re-seeing a
-- match never duplicates history.
CREATE TABLE IF NOT EXISTS matches (
    steam32 BIGINT NOT NULL,
    match_id BIGINT NOT NULL,
    start_time TIMESTAMP WITH TIME ZONE NOT NULL,
    duration INTEGER NOT NULL DEFAULT 0,
    hero_id INTEGER NOT NULL DEFAULT 0,
    kills INTEGER NOT NULL DEFAULT 0,
    deaths INTEGER NOT NULL DEFAULT 0,
    assists INTEGER NOT NULL DEFAULT 0,
    lobby_type INTEGER NOT NULL DEFAULT 0,
    game_mode INTEGER NOT NULL DEFAULT 0,
    radiant_win BOOLEAN NOT NULL DEFAULT FALSE,
    player_slot INTEGER NOT NULL DEFAULT 0,

    -- Economy from match details; NULL when details were unavailable.
    net_worth INTEGER,
    gpm INTEGER,

    -- Inferred role: 'core', 'support' or '' when unknown.
    role VARCHAR(10) NOT NULL DEFAULT '',

    -- Simulated rating bookkeeping for ranked matches.
    rating_delta INTEGER,
    rating_after INTEGER,

    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (steam32, match_id),

    CONSTRAINT valid_duration CHECK (duration >= 0),
    CONSTRAINT valid_role CHECK (role IN ('core', 'support', ''))
);

-- Recency queries: last N matches, today's report window.
CREATE INDEX IF NOT EXISTS idx_matches_steam32_start_time ON matches(steam32, start_time DESC);

-- Ranked-only scans for streaks and the MMR trend.
CREATE INDEX IF NOT EXISTS idx_matches_ranked ON matches(steam32, start_time DESC) WHERE lobby_type = 7;
`

const migration002Down = `
DROP TABLE IF EXISTS matches;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE NOTIFICATION LOG
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create notification_log table
-- Version: 003

-- Delivery audit trail. Diagnostics only: the poll cycle relies on the
-- watermark in linked_accounts, not on this table.
CREATE TABLE IF NOT EXISTS notification_log (
    id UUID PRIMARY KEY,
    telegram_id BIGINT NOT NULL,
    type VARCHAR(20) NOT NULL,
    status VARCHAR(10) NOT NULL,
    attempts INTEGER NOT NULL DEFAULT 0,
    last_error TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    sent_at TIMESTAMP WITH TIME ZONE,

    CONSTRAINT valid_type CHECK (type IN ('match_card', 'streak_alert', 'rank_alert', 'daily_report', 'system')),
    CONSTRAINT valid_status CHECK (status IN ('pending', 'sent', 'failed', 'skipped'))
);

CREATE INDEX IF NOT EXISTS idx_notification_log_telegram_id ON notification_log(telegram_id, created_at DESC);
`

const migration003Down = `
DROP TABLE IF EXISTS notification_log;
`
