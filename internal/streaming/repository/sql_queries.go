package repository

const (
	createSessionQuery = `INSERT INTO watch_sessions (session_id, user_email, movie_id, video_file_id, "current_time",
	                 duration, progress_percentage, quality, volume, playback_speed, is_active, is_completed,
	                 is_paused, user_agent, ip_address, device_type, started_at, last_updated)
	                 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true, false, false, $11, $12, $13, now(), now())
	                 RETURNING *`

	getSessionByIDQuery = `SELECT * FROM watch_sessions WHERE session_id = $1`

	getActiveSessionQuery = `SELECT * FROM watch_sessions
	                 WHERE user_email = $1 AND movie_id = $2 AND is_active = true
	                 ORDER BY started_at DESC
	                 LIMIT 1`

	getLastSessionQuery = `SELECT * FROM watch_sessions
	                 WHERE user_email = $1 AND movie_id = $2
	                 ORDER BY last_updated DESC
	                 LIMIT 1`

	updateSessionQuery = `UPDATE watch_sessions
	                 SET "current_time" = $2, duration = $3, progress_percentage = $4, quality = $5,
	                     volume = $6, playback_speed = $7, is_active = $8, is_completed = $9,
	                     is_paused = $10, completed_at = $11, last_updated = now()
	                 WHERE session_id = $1`

	listActiveSessionsQuery = `SELECT * FROM watch_sessions
	                 WHERE user_email = $1 AND is_active = true
	                 ORDER BY started_at DESC`

	getHistoryQuery = `SELECT * FROM watch_history WHERE user_email = $1 AND movie_id = $2`

	upsertHistoryQuery = `INSERT INTO watch_history (history_id, user_email, movie_id, total_watch_time,
	                 completion_percentage, watch_count, last_position, last_quality, user_rating,
	                 first_watched, last_watched)
	                 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
	                 ON CONFLICT (user_email, movie_id) DO UPDATE
	                 SET total_watch_time = EXCLUDED.total_watch_time,
	                     completion_percentage = EXCLUDED.completion_percentage,
	                     watch_count = EXCLUDED.watch_count,
	                     last_position = EXCLUDED.last_position,
	                     last_quality = EXCLUDED.last_quality,
	                     last_watched = now()`

	getUserHistoryQuery = `SELECT * FROM watch_history
	                 WHERE user_email = $1
	                 ORDER BY last_watched DESC
	                 LIMIT $2`

	getUserTotalsQuery = `SELECT COUNT(*) AS total_movies_watched,
	                 COALESCE(SUM(total_watch_time), 0) AS total_watch_time,
	                 COALESCE(AVG(completion_percentage), 0) AS average_completion_rate
	                 FROM watch_history WHERE user_email = $1`

	getStatsQuery = `SELECT * FROM streaming_stats WHERE movie_id = $1`

	upsertStatsQuery = `INSERT INTO streaming_stats (stats_id, movie_id, total_views, unique_viewers,
	                 completed_views, total_watch_time, average_completion_rate, average_session_duration,
	                 most_popular_quality, average_rating, total_ratings, created_at, updated_at)
	                 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
	                 ON CONFLICT (movie_id) DO UPDATE
	                 SET total_views = EXCLUDED.total_views,
	                     unique_viewers = EXCLUDED.unique_viewers,
	                     completed_views = EXCLUDED.completed_views,
	                     total_watch_time = EXCLUDED.total_watch_time,
	                     average_completion_rate = EXCLUDED.average_completion_rate,
	                     average_session_duration = EXCLUDED.average_session_duration,
	                     most_popular_quality = EXCLUDED.most_popular_quality,
	                     average_rating = EXCLUDED.average_rating,
	                     total_ratings = EXCLUDED.total_ratings,
	                     updated_at = now()`

	countDistinctViewersQuery = `SELECT COUNT(DISTINCT user_email) FROM watch_sessions WHERE movie_id = $1`

	mostUsedQualityQuery = `SELECT COALESCE(quality, '') FROM watch_sessions
	                 WHERE movie_id = $1 AND quality <> ''
	                 GROUP BY quality
	                 ORDER BY COUNT(*) DESC
	                 LIMIT 1`
)
