package repository

const (
	createVideoQuery = `INSERT INTO video_files (video_id, movie_id, file_name, original_file_name, file_path,
	                 file_size, mime_type, quality, processing_status, processing_progress, is_primary,
	                 is_processed, is_available, uploaded_by, created_at, updated_at)
	                 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, false, false, $11, now(), now())
	                 RETURNING *`

	getVideoByIDQuery = `SELECT * FROM video_files WHERE video_id = $1`

	getPrimaryForMovieQuery = `SELECT * FROM video_files
	                 WHERE movie_id = $1 AND processing_status = 'completed'
	                 ORDER BY is_primary DESC, created_at DESC
	                 LIMIT 1`

	getTotalByUploaderQuery = `SELECT COUNT(video_id) FROM video_files WHERE uploaded_by = $1 AND ($2 = 0 OR movie_id = $2)`

	getVideosByUploaderQuery = `SELECT * FROM video_files
	                 WHERE uploaded_by = $1 AND ($2 = 0 OR movie_id = $2)
	                 ORDER BY created_at DESC OFFSET $3 LIMIT $4`

	deleteVideoQuery = `DELETE FROM video_files WHERE video_id = $1`

	updateMetadataQuery = `UPDATE video_files
	                 SET duration_seconds = $2, resolution_width = $3, resolution_height = $4,
	                     bitrate = $5, fps = $6, codec = $7, updated_at = now()
	                 WHERE video_id = $1`

	setProcessingQuery = `UPDATE video_files
	                 SET processing_status = 'processing', processing_error = NULL, updated_at = now()
	                 WHERE video_id = $1`

	updateProgressQuery = `UPDATE video_files
	                 SET processing_progress = GREATEST(processing_progress, $2), updated_at = now()
	                 WHERE video_id = $1`

	setArtifactsQuery = `UPDATE video_files
	                 SET thumbnail_path = $2, preview_path = $3, updated_at = now()
	                 WHERE video_id = $1`

	finishProcessingQuery = `UPDATE video_files
	                 SET processing_status = $2, processing_error = NULLIF($3, ''), processing_progress = 1.0,
	                     is_processed = ($2 = 'completed'), is_available = ($2 = 'completed'), updated_at = now()
	                 WHERE video_id = $1`

	resetForRetryQuery = `UPDATE video_files
	                 SET processing_status = 'pending', processing_progress = 0, processing_error = NULL,
	                     is_processed = false, is_available = false, updated_at = now()
	                 WHERE video_id = $1`

	createQualityQuery = `INSERT INTO video_qualities (quality_id, video_id, quality, resolution_width,
	                 resolution_height, bitrate, file_path, file_size, is_ready, created_at)
	                 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`

	getQualitiesQuery = `SELECT * FROM video_qualities WHERE video_id = $1 AND is_ready = true ORDER BY resolution_height ASC`

	deleteQualitiesQuery = `DELETE FROM video_qualities WHERE video_id = $1`
)
